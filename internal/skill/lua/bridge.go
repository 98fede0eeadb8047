package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// maxBridgeDepth bounds table conversion so cyclic tables cannot hang
// a handler call.
const maxBridgeDepth = 8

// toGoValue converts a Lua value into a plain Go value for result data.
func toGoValue(lv lua.LValue) any {
	return toGoValueDepth(lv, 0)
}

func toGoValueDepth(lv lua.LValue, depth int) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if depth >= maxBridgeDepth {
			return nil
		}
		return tableToGo(v, depth+1)
	default:
		return nil
	}
}

// tableToGo converts a table to a slice when it is a contiguous array,
// otherwise to a string-keyed map.
func tableToGo(t *lua.LTable, depth int) any {
	maxN := t.MaxN()
	if maxN > 0 {
		count := 0
		t.ForEach(func(_, _ lua.LValue) { count++ })
		if count == maxN {
			arr := make([]any, maxN)
			for i := 1; i <= maxN; i++ {
				arr[i-1] = toGoValueDepth(t.RawGetInt(i), depth)
			}
			return arr
		}
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGoValueDepth(v, depth)
	})
	return m
}

// toLuaValue converts a plain Go value to a Lua value.
func toLuaValue(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []string:
		t := L.NewTable()
		for _, s := range val {
			t.Append(lua.LString(s))
		}
		return t
	default:
		return lua.LNil
	}
}
