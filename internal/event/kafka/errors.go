package kafka

// ParseError сообщение не удалось разобрать; такие сообщения сразу уходят в DLQ
type ParseError struct {
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}
