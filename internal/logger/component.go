package logger

import "codeberg.org/mutker/chartpipe/internal/errors"

// Component is a Logger that tags every event with the emitting component.
// It resolves the package logger on every call, so components created
// before Init still log through the configured output.
type Component struct {
	name   string
	fields map[string]string
}

var _ Logger = (*Component)(nil)

// With returns a Logger for the named component
func With(component string) *Component {
	return &Component{name: component}
}

// Str returns a copy of c that also tags events with key=value
func (c *Component) Str(key, value string) *Component {
	fields := make(map[string]string, len(c.fields)+1)
	for k, v := range c.fields {
		fields[k] = v
	}
	fields[key] = value

	return &Component{name: c.name, fields: fields}
}

func (c *Component) tag(e *LogEvent) *LogEvent {
	e.Event = e.Event.Str("component", c.name)
	for k, v := range c.fields {
		e.Event = e.Event.Str(k, v)
	}

	return e
}

func (c *Component) Debug() *LogEvent { return c.tag(Debug()) }
func (c *Component) Info() *LogEvent  { return c.tag(Info()) }
func (c *Component) Warn() *LogEvent  { return c.tag(Warn()) }
func (c *Component) Error() *LogEvent { return c.tag(Error()) }

func (c *Component) ErrorWithCode(err errors.Error) *LogEvent {
	return c.tag(ErrorWithCode(err))
}
