package spop

import "fmt"

// VarScope is the scope byte of a SET_VAR/UNSET_VAR action.
type VarScope byte

const (
	ScopeProcess     VarScope = 0
	ScopeSession     VarScope = 1
	ScopeTransaction VarScope = 2
	ScopeRequest     VarScope = 3
	ScopeResponse    VarScope = 4
)

// ActionType is the action_type byte of an action record.
type ActionType byte

const (
	ActionSetVar   ActionType = 1
	ActionUnsetVar ActionType = 2
)

// Action is one ACK-payload action record: either a variable assignment
// (SET_VAR, carrying a value) or a variable removal (UNSET_VAR, which
// doesn't).
type Action struct {
	Type  ActionType
	Scope VarScope
	Name  string
	Value TypedData // only meaningful when Type == ActionSetVar
}

// SetVar builds a SET_VAR action.
func SetVar(scope VarScope, name string, value TypedData) Action {
	return Action{Type: ActionSetVar, Scope: scope, Name: name, Value: value}
}

// UnsetVar builds an UNSET_VAR action.
func UnsetVar(scope VarScope, name string) Action {
	return Action{Type: ActionUnsetVar, Scope: scope, Name: name}
}

func (a ActionType) nArgs() int {
	switch a {
	case ActionSetVar:
		return 3
	case ActionUnsetVar:
		return 2
	default:
		return 0
	}
}

// encodeAction appends one action record's wire encoding to dst.
func encodeAction(dst []byte, a Action) ([]byte, error) {
	switch a.Type {
	case ActionSetVar:
		dst = append(dst, byte(ActionSetVar), byte(a.Type.nArgs()), byte(a.Scope))
		dst = encodeString(dst, a.Name)
		var err error
		dst, err = encodeTypedData(dst, a.Value)
		if err != nil {
			return nil, fmt.Errorf("action %q value: %w", a.Name, err)
		}
		return dst, nil
	case ActionUnsetVar:
		dst = append(dst, byte(ActionUnsetVar), byte(a.Type.nArgs()), byte(a.Scope))
		dst = encodeString(dst, a.Name)
		return dst, nil
	default:
		return nil, fmt.Errorf("encode action: %w: %d", ErrInvalidAction, byte(a.Type))
	}
}

// decodeAction reads one action record from c.
func decodeAction(c *cursor) (Action, error) {
	rawType, err := c.readByte()
	if err != nil {
		return Action{}, fmt.Errorf("action type: %w", err)
	}
	actionType := ActionType(rawType)
	if actionType != ActionSetVar && actionType != ActionUnsetVar {
		return Action{}, fmt.Errorf("action type: %w: %d", ErrInvalidAction, rawType)
	}

	nArgs, err := c.readByte()
	if err != nil {
		return Action{}, fmt.Errorf("action n_args: %w", err)
	}
	if int(nArgs) != actionType.nArgs() {
		return Action{}, fmt.Errorf("action n_args: %w: got %d want %d", ErrInvalidNumberOfArgs, nArgs, actionType.nArgs())
	}

	rawScope, err := c.readByte()
	if err != nil {
		return Action{}, fmt.Errorf("action scope: %w", err)
	}
	scope := VarScope(rawScope)
	if scope > ScopeResponse {
		return Action{}, fmt.Errorf("action scope: %w: %d", ErrInvalidAction, rawScope)
	}

	name, err := decodeString(c)
	if err != nil {
		return Action{}, fmt.Errorf("action name: %w", err)
	}

	a := Action{Type: actionType, Scope: scope, Name: name}
	if actionType == ActionSetVar {
		value, err := decodeTypedData(c)
		if err != nil {
			return Action{}, fmt.Errorf("action %q value: %w", name, err)
		}
		a.Value = value
	}
	return a, nil
}

// encodeActionList appends the wire encoding of an ACK payload (a list of
// action records running to the end of the frame).
func encodeActionList(dst []byte, actions []Action) ([]byte, error) {
	for _, a := range actions {
		var err error
		dst, err = encodeAction(dst, a)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// decodeActionList reads action records from c until it is exhausted.
func decodeActionList(c *cursor) ([]Action, error) {
	var actions []Action
	for c.remaining() > 0 {
		a, err := decodeAction(c)
		if err != nil {
			return nil, fmt.Errorf("action list: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
