package events

// Listener, event'leri dinleyen ve işleyen interface.
type Listener interface {
	// Handle, event'i işler. Hata dönerse dispatcher loglar ve diğer
	// listener'lara devam eder.
	Handle(event Event) error
}

// ListenerFunc, fonksiyonu Listener'a çevirir.
//
// Örnek:
//
//	dispatcher.Listen(events.EventQueryExecuted, events.ListenerFunc(func(e events.Event) error {
//	    return nil
//	}))
type ListenerFunc func(Event) error

func (f ListenerFunc) Handle(event Event) error {
	return f(event)
}

// AsyncListener, listener'ı dispatcher'ın takip ettiği bir goroutine'de
// çalıştırır. Shutdown bu goroutine'lerin bitmesini bekler. Hatalar loglanır,
// çağırana dönmez.
//
// Örnek:
//
//	dispatcher.Listen(events.EventQueryExecuted, events.NewAsyncListener(dispatcher, audit))
type AsyncListener struct {
	dispatcher *Dispatcher
	listener   Listener
}

// NewAsyncListener, d üzerinde takip edilen asenkron listener oluşturur.
func NewAsyncListener(d *Dispatcher, listener Listener) *AsyncListener {
	return &AsyncListener{
		dispatcher: d,
		listener:   listener,
	}
}

func (a *AsyncListener) Handle(event Event) error {
	a.dispatcher.spawn(event, func() {
		if err := a.listener.Handle(event); err != nil {
			a.dispatcher.logger.Error("❌ async listener hatası", "event", event.Name(), "error", err)
		}
	})
	return nil
}

// ConditionalListener, sadece koşul sağlandığında çalışan listener.
//
// Örnek (yalnızca 100ms'den yavaş sorgular):
//
//	slow := events.NewConditionalListener(logSlow, func(e events.Event) bool {
//	    return e.Payload().(events.QueryInfo).Duration > 100*time.Millisecond
//	})
type ConditionalListener struct {
	listener  Listener
	condition func(Event) bool
}

// NewConditionalListener, koşullu listener oluşturur.
func NewConditionalListener(listener Listener, condition func(Event) bool) *ConditionalListener {
	return &ConditionalListener{
		listener:  listener,
		condition: condition,
	}
}

func (c *ConditionalListener) Handle(event Event) error {
	if c.condition(event) {
		return c.listener.Handle(event)
	}
	return nil
}
