package lua

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// registration is one deskai.register call captured at load time.
type registration struct {
	patterns []string
	priority int
	exact    bool
	fn       *lua.LFunction
}

// Script is a Lua skill module. It satisfies the same module contract
// as the compiled-in skills, so the loader treats both alike.
type Script struct {
	name  string
	path  string
	state *State

	regs []registration

	// current is the session of the in-flight handler call. It is set
	// and cleared under the state mutex, which also serializes the
	// deskai.get/set callbacks that read it.
	current *session.Session
}

// LoadScript runs a Lua file and captures its handler registrations.
// The script's deskai.register calls happen during this execution; a
// script that errors is closed and never becomes a module.
func LoadScript(path string) (*Script, error) {
	s := &Script{
		name:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		path:  path,
		state: NewState(),
	}
	s.installAPI()

	if err := s.state.DoFile(path); err != nil {
		s.state.Close()
		return nil, fmt.Errorf("load script %s: %w", s.name, err)
	}
	return s, nil
}

// Name returns the module name, the script's base filename.
func (s *Script) Name() string {
	return s.name
}

// Path returns the script's source path.
func (s *Script) Path() string {
	return s.path
}

// Close releases the script's interpreter state.
func (s *Script) Close() error {
	return s.state.Close()
}

// Register installs the captured registrations as dispatch handlers.
func (s *Script) Register(reg *dispatch.Registry) (int, error) {
	count := 0
	for _, r := range s.regs {
		opts := []dispatch.RegisterOption{dispatch.WithPriority(r.priority)}
		if r.exact {
			opts = append(opts, dispatch.WithExactMatch())
		}

		fn := r.fn
		handler := func(sess *session.Session, query string) dispatch.Result {
			return s.invoke(fn, sess, query)
		}
		if err := reg.Register(r.patterns, handler, opts...); err != nil {
			return count, fmt.Errorf("script %s: %w", s.name, err)
		}
		count++
	}
	return count, nil
}

// invoke calls a Lua handler for one query and maps its return value
// to a dispatch result.
func (s *Script) invoke(fn *lua.LFunction, sess *session.Session, query string) dispatch.Result {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	s.current = sess
	defer func() { s.current = nil }()

	ret, err := s.state.callLocked(fn, lua.LString(query))
	if err != nil {
		return dispatch.Error(err)
	}
	return s.resultFromLua(ret)
}

// resultFromLua maps a handler return value to a dispatch result:
// nil opts out, a string is a plain reply, and a table carries the
// full response/error/action/data shape.
func (s *Script) resultFromLua(ret lua.LValue) dispatch.Result {
	switch v := ret.(type) {
	case *lua.LNilType:
		return dispatch.OptOut()
	case lua.LString:
		return dispatch.Reply(string(v))
	case *lua.LTable:
		return s.resultFromTable(v)
	default:
		return dispatch.Reply(ret.String())
	}
}

func (s *Script) resultFromTable(t *lua.LTable) dispatch.Result {
	response := lua.LVAsString(t.RawGetString("response"))
	isErr := lua.LVAsBool(t.RawGetString("error"))

	var res dispatch.Result
	if isErr {
		msg := response
		if msg == "" {
			msg = "script handler failed"
		}
		res = dispatch.Result{
			Status:   dispatch.StatusError,
			Err:      errors.New(msg),
			Response: msg,
		}
	} else {
		res = dispatch.Reply(response)
	}

	if action := lua.LVAsString(t.RawGetString("action")); action != "" {
		res = res.WithAction(dispatch.Action(action))
	}
	if data, ok := t.RawGetString("data").(*lua.LTable); ok {
		data.ForEach(func(k, v lua.LValue) {
			res = res.WithData(k.String(), toGoValue(v))
		})
	}
	return res
}

// installAPI publishes the deskai table the script programs against.
func (s *Script) installAPI() {
	L := s.state.L

	api := L.NewTable()

	L.SetField(api, "register", L.NewFunction(s.luaRegister))

	// deskai.user() returns the current user's name.
	L.SetField(api, "user", L.NewFunction(func(L *lua.LState) int {
		if s.current == nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(s.current.UserName()))
		return 1
	}))

	// deskai.get(key[, default]) reads a session value, falling back to
	// the persisted setting of the same name.
	L.SetField(api, "get", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		def := L.Get(2)
		if s.current == nil {
			L.Push(def)
			return 1
		}
		if v, ok := s.current.Value(key); ok {
			L.Push(toLuaValue(L, v))
			return 1
		}
		if v := s.current.Setting(key, ""); v != "" {
			L.Push(lua.LString(v))
			return 1
		}
		L.Push(def)
		return 1
	}))

	// deskai.set(key, value) stores a session value.
	L.SetField(api, "set", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		value := L.Get(2)
		if s.current != nil {
			s.current.SetValue(key, toGoValue(value))
		}
		return 0
	}))

	// deskai.notify(text) queues a notice for the next loop iteration.
	L.SetField(api, "notify", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		if s.current != nil {
			s.current.PushNotice(text)
		}
		return 0
	}))

	L.SetGlobal("deskai", api)
}

// luaRegister implements deskai.register(patterns, handler[, opts]).
// patterns is a string or an array of strings; opts may carry priority
// (number) and exact (boolean).
func (s *Script) luaRegister(L *lua.LState) int {
	patterns, err := patternsArg(L.Get(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	fn := L.CheckFunction(2)

	reg := registration{patterns: patterns, fn: fn}
	if opts, ok := L.Get(3).(*lua.LTable); ok {
		reg.priority = int(lua.LVAsNumber(opts.RawGetString("priority")))
		reg.exact = lua.LVAsBool(opts.RawGetString("exact"))
	}

	s.regs = append(s.regs, reg)
	return 0
}

func patternsArg(lv lua.LValue) ([]string, error) {
	switch v := lv.(type) {
	case lua.LString:
		return []string{string(v)}, nil
	case *lua.LTable:
		var patterns []string
		n := v.MaxN()
		for i := 1; i <= n; i++ {
			item, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				return nil, fmt.Errorf("pattern %d is not a string", i)
			}
			patterns = append(patterns, string(item))
		}
		if len(patterns) == 0 {
			return nil, errors.New("patterns table is empty")
		}
		return patterns, nil
	default:
		return nil, errors.New("patterns must be a string or an array of strings")
	}
}
