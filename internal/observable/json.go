package observable

import jsoniter "github.com/json-iterator/go"

// json honours json.Marshaler, so nested observables encode through their
// own MarshalJSON and never expose wrapper internals.
var json = jsoniter.ConfigCompatibleWithStandardLibrary
