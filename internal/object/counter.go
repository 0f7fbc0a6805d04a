package object

// Counter is an additive scalar.
type Counter struct {
	Title string `json:"title"`
	Value int64  `json:"value"`
}

// NewCounter creates a counter holding value.
func NewCounter(title string, value int64) *Counter {
	return &Counter{Title: title, Value: value}
}

func (c *Counter) Name() string     { return c.Title }
func (c *Counter) TypeName() string { return TypeCounter }
