package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

const (
	CityKey = "city"

	DefaultForecastDays   = 7
	DefaultMinQueryLength = 3
)

var (
	ErrPermissionDenied = errors.New("permission to access location was denied")
	ErrClosed           = errors.New("manager closed")
)

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithDebounce(interval time.Duration) Option {
	return func(m *Manager) {
		m.debounce = interval
	}
}

func WithForecastDays(days int) Option {
	return func(m *Manager) {
		if days > 0 {
			m.days = days
		}
	}
}

// WithMinQueryLength sets the shortest query, in characters, that reaches
// the suggestion lookup.
func WithMinQueryLength(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.minQueryLength = n
		}
	}
}

// WithOnChange registers a listener for every published ViewState.
func WithOnChange(fn func(ViewState)) Option {
	return func(m *Manager) {
		m.state.onChange = fn
	}
}

// Manager drives the weather screen: it resolves the initial location,
// runs debounced suggestion lookups and applies manual selections. All
// results land in a single ViewState.
type Manager struct {
	weather Weather
	geo     Geolocation
	store   Store
	logger  *slog.Logger

	days           int
	minQueryLength int
	debounce       time.Duration

	state     *state
	debouncer *Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	lookupSeq   atomic.Uint64
	forecastSeq atomic.Uint64

	// busy counts workflows that hold the loading flag.
	busy atomic.Int64

	mu           sync.Mutex
	cancelLookup context.CancelFunc
}

// New creates a Manager whose in-flight work is bound to ctx and to Close.
func New(ctx context.Context, weather Weather, geo Geolocation, store Store, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(ctx)

	m := &Manager{
		weather:        weather,
		geo:            geo,
		store:          store,
		logger:         slog.Default(),
		days:           DefaultForecastDays,
		minQueryLength: DefaultMinQueryLength,
		debounce:       DefaultDebounce,
		state:          &state{},
		ctx:            ctx,
		cancel:         cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.debouncer = NewDebouncer(m.debounce, m.debounced)

	return m
}

func (m *Manager) Snapshot() ViewState {
	return m.state.snapshot()
}

// Resolve finds the first forecast to show without user input: the cached
// city when there is one, the device location otherwise.
func (m *Manager) Resolve(ctx context.Context) error {
	ctx, cancel := m.scope(ctx)
	defer cancel()

	m.startLoading()
	defer m.endLoading()

	city, err := m.store.Get(ctx, CityKey)
	if err != nil {
		m.logger.Warn("read cached city", "error", err)
		city = ""
	}

	if city == "" {
		return m.LocateDevice(ctx)
	}

	m.logger.Debug("using cached city", "city", city)
	_, err = m.fetchForecast(ctx, city, nil)
	return err
}

// LocateDevice shows the forecast for the current device coordinates. The
// location is not remembered as the cached city.
func (m *Manager) LocateDevice(ctx context.Context) error {
	ctx, cancel := m.scope(ctx)
	defer cancel()

	granted, err := m.geo.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("request location permission: %w", err)
	}
	if !granted {
		m.logger.Error(ErrPermissionDenied.Error())
		return ErrPermissionDenied
	}

	m.startLoading()
	defer m.endLoading()

	coords, err := m.geo.CurrentCoordinates(ctx)
	if err != nil {
		return fmt.Errorf("current coordinates: %w", err)
	}

	_, err = m.fetchForecast(ctx, CoordinateQuery(coords), func(vs *ViewState) {
		vs.SearchVisible = false
		vs.Query = ""
	})
	return err
}

// Select shows the forecast for a chosen suggestion and remembers its name
// as the cached city.
func (m *Manager) Select(ctx context.Context, loc Location) error {
	ctx, cancel := m.scope(ctx)
	defer cancel()

	m.startLoading()
	defer m.endLoading()

	m.lookupSeq.Add(1)
	m.apply(func(vs *ViewState) bool {
		vs.SearchVisible = false
		vs.Query = ""
		vs.Suggestions = nil
		return true
	})

	applied, err := m.fetchForecast(ctx, loc.Name, nil)
	if err != nil || !applied {
		return err
	}

	if err := m.store.Set(ctx, CityKey, loc.Name); err != nil {
		return fmt.Errorf("store city %q: %w", loc.Name, err)
	}
	m.logger.Info("city saved", "city", loc.Name)

	return nil
}

// Search feeds one keystroke's worth of input into the debounced lookup.
func (m *Manager) Search(query string) {
	m.showQuery(query)
	m.debouncer.Call(query)
}

// Suggest runs the suggestion lookup for query right away, without the
// debounce delay.
func (m *Manager) Suggest(ctx context.Context, query string) error {
	m.showQuery(query)
	return m.lookup(ctx, query)
}

// ToggleSearch shows or hides the search box. Hiding it drops the query
// and any suggestions, including lookups still in flight.
func (m *Manager) ToggleSearch() {
	m.apply(func(vs *ViewState) bool {
		vs.SearchVisible = !vs.SearchVisible
		if !vs.SearchVisible {
			m.lookupSeq.Add(1)
			vs.Query = ""
		}
		return true
	})
}

// Close cancels in-flight work and pending lookups. Results arriving after
// Close are dropped.
func (m *Manager) Close() {
	m.debouncer.Stop()
	m.cancel()
}

// showQuery publishes the typed text. A query too short to look up drops
// the suggestions at once instead of after the debounce delay.
func (m *Manager) showQuery(query string) {
	short := utf8.RuneCountInString(query) < m.minQueryLength
	m.apply(func(vs *ViewState) bool {
		vs.SearchVisible = true
		vs.Query = query
		if short {
			vs.Suggestions = nil
		}
		return true
	})
}

func (m *Manager) debounced(query string) {
	if err := m.lookup(context.Background(), query); err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Warn("suggest locations", "query", query, "error", err)
	}
}

// lookup replaces the suggestions with the matches for query. Only the most
// recently issued lookup may publish; a newer one also cancels the older.
func (m *Manager) lookup(ctx context.Context, query string) error {
	seq := m.lookupSeq.Add(1)

	if utf8.RuneCountInString(query) < m.minQueryLength {
		m.apply(func(vs *ViewState) bool {
			if len(vs.Suggestions) == 0 {
				return false
			}
			vs.Suggestions = nil
			return true
		})
		return nil
	}

	ctx, cancel := m.scope(ctx)
	defer cancel()

	m.mu.Lock()
	if m.cancelLookup != nil {
		m.cancelLookup()
	}
	m.cancelLookup = cancel
	m.mu.Unlock()

	locations, err := m.weather.SuggestLocations(ctx, query)
	if err != nil {
		return fmt.Errorf("suggestions for %q: %w", query, err)
	}

	applied := m.apply(func(vs *ViewState) bool {
		if seq != m.lookupSeq.Load() || !vs.SearchVisible {
			return false
		}
		vs.Suggestions = locations
		return true
	})
	if !applied {
		m.logger.Debug("dropped stale suggestions", "query", query)
	}

	return nil
}

// fetchForecast runs one forecast request and publishes its result unless a
// newer forecast request was started meanwhile.
func (m *Manager) fetchForecast(ctx context.Context, q string, then func(vs *ViewState)) (bool, error) {
	seq := m.forecastSeq.Add(1)

	forecast, err := m.weather.Forecast(ctx, q, m.days)
	if err != nil {
		m.logger.Error("fetch forecast", "q", q, "error", err)
		return false, fmt.Errorf("forecast for %q: %w", q, err)
	}

	applied := m.apply(func(vs *ViewState) bool {
		if seq != m.forecastSeq.Load() {
			return false
		}
		vs.Weather = &forecast
		if then != nil {
			then(vs)
		}
		return true
	})
	if !applied {
		m.logger.Debug("dropped stale forecast", "q", q)
		if m.ctx.Err() != nil {
			return false, ErrClosed
		}
		return false, nil
	}

	m.logger.Info("weather updated", "q", q, "location", forecast.Location.Name)
	return true, nil
}

// startLoading raises the loading flag for the calling workflow. The flag
// drops once the last workflow holding it calls endLoading, whether it
// succeeded or not.
func (m *Manager) startLoading() {
	m.busy.Add(1)
	m.apply(func(vs *ViewState) bool {
		if vs.Loading {
			return false
		}
		vs.Loading = true
		return true
	})
}

func (m *Manager) endLoading() {
	m.busy.Add(-1)
	m.apply(func(vs *ViewState) bool {
		if !vs.Loading || m.busy.Load() > 0 {
			return false
		}
		vs.Loading = false
		return true
	})
}

// apply publishes a state change unless the manager has been closed.
func (m *Manager) apply(fn func(vs *ViewState) bool) bool {
	if m.ctx.Err() != nil {
		return false
	}
	return m.state.update(fn)
}

// scope derives a context that ends with either parent or the manager.
func (m *Manager) scope(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(m.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// CoordinateQuery formats coordinates the way the weather API accepts them
// in place of a city name.
func CoordinateQuery(c Coordinates) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
