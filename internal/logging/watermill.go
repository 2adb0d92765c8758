package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillAdapter sends watermill's internal logs to zerolog.
type WatermillAdapter struct {
	fields watermill.LogFields
}

func NewWatermillAdapter() *WatermillAdapter {
	return &WatermillAdapter{}
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.apply(Error().Err(err), fields).Msg(msg)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.apply(Info(), fields).Msg(msg)
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.apply(Debug(), fields).Msg(msg)
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.apply(Trace(), fields).Msg(msg)
}

func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{fields: a.fields.Add(fields)}
}

func (a *WatermillAdapter) apply(evt *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	return evt.Fields(map[string]interface{}(a.fields.Add(fields)))
}
