package script

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tether/internal/expr"
	"github.com/dshills/tether/internal/logging"
)

// DefaultTimeout bounds each call into Lua, including loading a script.
const DefaultTimeout = 2 * time.Second

// Engine wraps a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes every
// entry into Lua, so an Engine may be shared by expressions evaluated on
// different goroutines.
type Engine struct {
	mu sync.Mutex
	L  *lua.LState

	timeout time.Duration
	logger  *logging.Logger

	// builtins are the globals present before any script ran.
	builtins map[string]bool
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithLogger sets the logger that receives script print output.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a sandboxed Lua engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.GetLogger().WithComponent("script")
	}

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.L)
	e.installSandbox()

	e.builtins = make(map[string]bool)
	e.L.G.Global.ForEach(func(k, _ lua.LValue) {
		if name, ok := k.(lua.LString); ok {
			e.builtins[string(name)] = true
		}
	})
	return e
}

// openSafeLibraries opens the libraries that cannot reach outside the
// state. io, os, debug and package are never opened.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// installSandbox removes the base functions that load code from disk or
// strings and routes print to the log.
func (e *Engine) installSandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		e.L.SetGlobal(name, lua.LNil)
	}

	e.L.SetGlobal("print", e.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		e.logger.Info("%s", strings.Join(parts, "\t"))
		return 0
	}))
}

// LoadFile runs the Lua file at path, defining its globals.
func (e *Engine) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	fn, err := e.L.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	_, err = e.call(fn, path, nil)
	return err
}

// LoadString runs a chunk of Lua source. name labels errors.
func (e *Engine) LoadString(name, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	fn, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	_, err = e.call(fn, name, nil)
	return err
}

// Call calls a global Lua function and returns its first result.
func (e *Engine) Call(name string, args ...any) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	fn, ok := e.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFunction)
	}
	return e.call(fn, name, args)
}

// call runs fn under the timeout. The caller holds mu.
func (e *Engine) call(fn *lua.LFunction, name string, args []any) (any, error) {
	ctx := context.Background()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	top := e.L.GetTop()
	defer e.L.SetTop(top)

	e.L.Push(fn)
	for _, a := range args {
		e.L.Push(toLua(e.L, a))
	}
	if err := e.L.PCall(len(args), 1, nil); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w after %v", name, ErrTimeout, e.timeout)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return toGo(e.L.Get(-1)), nil
}

// Names returns the functions defined by loaded scripts, sorted.
func (e *Engine) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.names()
}

func (e *Engine) names() []string {
	if e.closed {
		return nil
	}
	var names []string
	e.L.G.Global.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok || e.builtins[string(name)] {
			return
		}
		if _, ok := v.(*lua.LFunction); ok {
			names = append(names, string(name))
		}
	})
	sort.Strings(names)
	return names
}

// Functions exposes every function defined by loaded scripts as an
// expression function. Calls resolve the name at call time, so loading a
// newer definition replaces the behavior of existing expressions.
func (e *Engine) Functions() map[string]expr.Func {
	e.mu.Lock()
	defer e.mu.Unlock()

	funcs := make(map[string]expr.Func)
	for _, name := range e.names() {
		funcs[name] = func(args ...any) (any, error) {
			return e.Call(name, args...)
		}
	}
	return funcs
}

// Close releases the Lua state. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.L.Close()
	e.closed = true
	return nil
}
