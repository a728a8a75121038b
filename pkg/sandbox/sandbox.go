// Package sandbox evaluates untrusted page scripts in an isolated ECMAScript
// runtime.
//
// The runtime has the language built-ins and exactly one host binding: an
// empty object named window that the script may populate. There is no
// require, console, timer, network or filesystem access. Evaluation and the
// subsequent reads share one deadline, so getters or toString methods planted
// by the script cannot stall the caller either.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// RootName is the global under which the script sees the writable root object.
const RootName = "window"

const (
	defaultTimeout      = 2 * time.Second
	defaultMaxScript    = 512 << 10
	defaultMaxCallStack = 256
)

var (
	// ErrTimeout means the deadline expired while the script or a read was running.
	ErrTimeout = errors.New("script evaluation timed out")
	// ErrScriptTooLarge means the script exceeded Options.MaxScriptBytes.
	ErrScriptTooLarge = errors.New("script too large")
	// ErrScript wraps exceptions thrown by the evaluated script.
	ErrScript = errors.New("script failed")
)

// Options bounds an evaluation. Zero values select defaults.
type Options struct {
	Timeout        time.Duration
	MaxScriptBytes int
	MaxCallStack   int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxScriptBytes <= 0 {
		o.MaxScriptBytes = defaultMaxScript
	}
	if o.MaxCallStack <= 0 {
		o.MaxCallStack = defaultMaxCallStack
	}
	return o
}

type interrupted struct{}

// Eval runs script with a fresh root object, then calls read with that object
// while the same deadline is still armed. The runtime is discarded afterwards.
func Eval(ctx context.Context, script string, opts Options, read func(root *Object) error) (err error) {
	opts = opts.withDefaults()
	if len(script) > opts.MaxScriptBytes {
		return fmt.Errorf("%w: %d bytes", ErrScriptTooLarge, len(script))
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	vm := goja.New()
	vm.SetMaxCallStackSize(opts.MaxCallStack)

	root := vm.NewObject()
	if err := vm.Set(RootName, root); err != nil {
		return fmt.Errorf("failed to bind %s: %w", RootName, err)
	}

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(interrupted{})
	})
	defer stop()

	// Reads go through the goja API, which reports JS exceptions and
	// interrupts by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = classify(ctx, r)
		}
	}()

	if _, runErr := vm.RunString(script); runErr != nil {
		return classify(ctx, runErr)
	}

	return read(&Object{obj: root})
}

// classify maps a runtime failure or recovered panic to the package errors.
// An expired context takes precedence: interrupts surface in several shapes.
func classify(ctx context.Context, v any) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("script interrupted: %w", ctxErr)
	}
	return fmt.Errorf("%w: %v", ErrScript, v)
}

// Entry is one own enumerable property converted to a string.
type Entry struct {
	Key   string
	Value string
}

// Object is a read-only view of a script object.
type Object struct {
	obj *goja.Object
}

// Object returns the property name if it holds an object.
func (o *Object) Object(name string) (*Object, bool) {
	child, ok := o.obj.Get(name).(*goja.Object)
	if !ok || child == nil {
		return nil, false
	}
	return &Object{obj: child}, true
}

// String returns the property name converted with ToString, provided the
// value is truthy.
func (o *Object) String(name string) (string, bool) {
	v := o.obj.Get(name)
	if v == nil || !v.ToBoolean() {
		return "", false
	}
	return v.String(), true
}

// Entries lists own enumerable properties in order, converting each value
// with ToString (null and undefined become "null" and "undefined").
func (o *Object) Entries() []Entry {
	keys := o.obj.Keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v := o.obj.Get(k)
		s := "undefined"
		if v != nil {
			s = v.String()
		}
		entries = append(entries, Entry{Key: k, Value: s})
	}
	return entries
}
