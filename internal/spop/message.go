package spop

import "fmt"

// Message is one named entry of a NOTIFY payload's list-of-messages: a
// message name plus its own ordered KV-list of arguments.
type Message struct {
	Name string
	Args KVList
}

// encodeMessageList appends the wire encoding of a NOTIFY payload.
func encodeMessageList(dst []byte, messages []Message) ([]byte, error) {
	for _, m := range messages {
		if len(m.Args) > 0xFF {
			return nil, fmt.Errorf("encode message %q: %w: arg_count %d overflows a byte", m.Name, ErrInvalidAction, len(m.Args))
		}
		dst = encodeString(dst, m.Name)
		dst = append(dst, byte(len(m.Args)))
		var err error
		dst, err = encodeKVList(dst, m.Args)
		if err != nil {
			return nil, fmt.Errorf("encode message %q: %w", m.Name, err)
		}
	}
	return dst, nil
}

// decodeMessageList reads (name, arg_count, arg_count KV pairs) records
// from c until it is exhausted.
func decodeMessageList(c *cursor) ([]Message, error) {
	var messages []Message
	for c.remaining() > 0 {
		name, err := decodeString(c)
		if err != nil {
			return nil, fmt.Errorf("message name: %w", err)
		}
		argCount, err := c.readByte()
		if err != nil {
			return nil, fmt.Errorf("message %q arg_count: %w", name, err)
		}

		args := make(KVList, 0, argCount)
		for i := 0; i < int(argCount); i++ {
			argName, err := decodeString(c)
			if err != nil {
				return nil, fmt.Errorf("message %q arg %d name: %w", name, i, err)
			}
			argValue, err := decodeTypedData(c)
			if err != nil {
				return nil, fmt.Errorf("message %q arg %q: %w", name, argName, err)
			}
			args = append(args, KVPair{Name: argName, Value: argValue})
		}
		messages = append(messages, Message{Name: name, Args: args})
	}
	return messages, nil
}
