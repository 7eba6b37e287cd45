package route

import "sync"

// Address is the addressable location. Navigate is the only way a view
// transition is requested; subscribers see every write in order.
type Address struct {
	mu        sync.Mutex
	fragment  string
	navigated bool
	subs      map[uint64]func(fragment string)
	nextID    uint64
}

// NewAddress returns an address positioned at fragment ("" means "#/").
func NewAddress(fragment string) *Address {
	if fragment == "" {
		fragment = CatalogFragment
	}
	return &Address{
		fragment: fragment,
		subs:     make(map[uint64]func(string)),
	}
}

// Fragment returns the current fragment.
func (a *Address) Fragment() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fragment
}

// Location parses the current fragment.
func (a *Address) Location() Location {
	return Parse(a.Fragment())
}

// Navigate writes fragment to the address and notifies subscribers.
func (a *Address) Navigate(fragment string) {
	if fragment == "" {
		fragment = CatalogFragment
	}
	a.mu.Lock()
	a.fragment = fragment
	a.navigated = true
	subs := make([]func(string), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	for _, fn := range subs {
		fn(fragment)
	}
}

// Navigated reports whether Navigate has been called.
func (a *Address) Navigated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.navigated
}

// Subscribe registers fn for change notifications.
func (a *Address) Subscribe(fn func(fragment string)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()
		})
	}
}
