package converter

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/j2eeguys/xstream/debug"
)

type entry struct {
	conv     Converter
	priority int
	serial   int
}

// Lookup resolves converters by probing registrations in descending
// priority order, registration order breaking ties. Resolution results
// are cached per type; any registration invalidates the cache, so a
// higher-priority converter added later takes over immediately.
//
// Lookup is safe for concurrent use.
type Lookup struct {
	mu      sync.RWMutex
	entries []entry
	serial  int
	cache   map[reflect.Type]Converter
}

func NewLookup() *Lookup {
	return &Lookup{cache: map[reflect.Type]Converter{}}
}

// Register adds a converter at the given priority.
func (l *Lookup) Register(c Converter, priority int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.serial++
	e := entry{conv: c, priority: priority, serial: l.serial}
	i := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].priority < priority
	})
	l.entries = append(l.entries, entry{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = e
	l.cache = map[reflect.Type]Converter{}
}

// ConverterForType finds the converter for t. A panic inside a
// CanConvert probe is captured as that converter's fault and probing
// continues with the next candidate. Results for a non-nil t are
// cached; a nil t is resolvable (some converters accept it for null
// handling) but never cached.
func (l *Lookup) ConverterForType(t reflect.Type) (Converter, error) {
	l.mu.RLock()
	if t != nil {
		if c, ok := l.cache[t]; ok {
			l.mu.RUnlock()
			return c, nil
		}
	}
	entries := make([]entry, len(l.entries))
	copy(entries, l.entries)
	l.mu.RUnlock()

	var probes []Probe
	for _, e := range entries {
		ok, fault := probe(e.conv, t)
		p := Probe{Converter: converterName(e.conv)}
		if fault != nil {
			p.Fault = fault.Error()
			probes = append(probes, p)
			continue
		}
		probes = append(probes, p)
		if ok {
			if debug.Lookup() {
				debug.Logf("lookup: %v -> %s", t, converterName(e.conv))
			}
			if t != nil {
				l.mu.Lock()
				l.cache[t] = e.conv
				l.mu.Unlock()
			}
			return e.conv, nil
		}
	}
	return nil, &NoConverterError{Type: t, Probes: probes}
}

func probe(c Converter, t reflect.Type) (ok bool, fault error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			fault = fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return c.CanConvert(t), nil
}

// Flush drops the resolution cache and forwards to every registered
// converter that itself caches derived data.
func (l *Lookup) Flush() {
	l.mu.Lock()
	l.cache = map[reflect.Type]Converter{}
	entries := make([]entry, len(l.entries))
	copy(entries, l.entries)
	l.mu.Unlock()
	for _, e := range entries {
		if c, ok := e.conv.(Caching); ok {
			c.FlushCache()
		}
	}
}

func converterName(c Converter) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}
