// Package expr evaluates small formulas and keeps their results in sync with
// an observable scope.
//
// A formula supports the ternary operator, || and &&, the equality and
// relational operators, + - * /, typeof, unary ! and -, parentheses,
// literals (numbers, quoted strings, true, false, null, undefined),
// identifiers, member access and calls such as name.toUpperCase() or
// Math.max(a, b). Each binary operator forms its own left-associative
// precedence level, lowest first:
//
//	|| && !== === != == >= > <= < - + / *
//
// so "1 - 2 + 3" evaluates as 1 - (2 + 3).
//
// Values follow the familiar loose scripting rules: numbers are float64,
// + concatenates when either side is a string, == converts operands while
// === does not, and "", 0, NaN, null and undefined are falsy.
//
// An Expression replaces every {path} placeholder in its text with a
// parameter bound through a binding.Manager, so the result is recomputed
// whenever a referenced value, or the contents of a referenced collection,
// changes. The result is published as the "result" property.
package expr
