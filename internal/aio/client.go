package aio

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/aio/internal/config"
)

const (
	// DefaultTimeout — таймаут HTTP-запроса по умолчанию.
	DefaultTimeout = 30 * time.Second

	// DefaultDataLimit — limit для ListData, если не задан.
	DefaultDataLimit = 100

	// HeaderKey — заголовок с API-ключом (не стандартный Bearer).
	HeaderKey = "X-AIO-Key"

	// HeaderRequestID — идентификатор запроса для корреляции логов.
	HeaderRequestID = "X-Request-ID"
)

// CredentialSource отдаёт текущие учётные данные.
// config.Store удовлетворяет этому интерфейсу.
type CredentialSource interface {
	Get() config.Credentials
}

// Observer получает результат каждого вызова API.
// outcome — "ok" или Kind.String() ошибки.
type Observer interface {
	ObserveRequest(operation, outcome string, duration time.Duration)
}

// Client — HTTP-клиент для Adafruit IO API.
type Client struct {
	creds      CredentialSource
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient задаёт HTTP-клиент (например, с подменённым транспортом в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout задаёт таймаут запроса. Переданный HTTP-клиент не изменяется.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver подключает сбор метрик.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient создаёт клиент. Учётные данные читаются из creds при каждом вызове.
func NewClient(creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		creds: creds,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- User ---

// GetUser возвращает владельца API-ключа.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var user User
	err := c.call(ctx, call{
		op:       "get_user",
		method:   http.MethodGet,
		segments: []string{"user"},
	}, &user)
	return resultOrNil(&user, err)
}

// --- Feeds ---

// ListFeeds возвращает все feeds аккаунта.
func (c *Client) ListFeeds(ctx context.Context) ([]Feed, error) {
	var feeds []Feed
	err := c.call(ctx, call{
		op:       "list_feeds",
		method:   http.MethodGet,
		scoped:   true,
		segments: []string{"feeds"},
	}, &feeds)
	if err != nil {
		return nil, err
	}
	return feeds, nil
}

// GetFeed возвращает feed по ключу.
func (c *Client) GetFeed(ctx context.Context, feedKey string) (*Feed, error) {
	var feed Feed
	err := c.call(ctx, call{
		op:       "get_feed",
		method:   http.MethodGet,
		scoped:   true,
		segments: []string{"feeds", feedKey},
		required: map[string]string{"feed key": feedKey},
	}, &feed)
	return resultOrNil(&feed, err)
}

// CreateFeed создаёт feed. Пустая Visibility означает private.
func (c *Client) CreateFeed(ctx context.Context, req CreateFeedRequest) (*Feed, error) {
	visibility := req.Visibility
	if visibility == "" {
		visibility = VisibilityPrivate
	}

	var feed Feed
	err := c.call(ctx, call{
		op:       "create_feed",
		method:   http.MethodPost,
		scoped:   true,
		segments: []string{"feeds"},
		required: map[string]string{"feed name": req.Name},
		body: createFeedBody{Feed: feedBody{
			Name:        req.Name,
			Description: req.Description,
			Visibility:  visibility,
		}},
	}, &feed)
	return resultOrNil(&feed, err)
}

// --- Data ---

// SendData добавляет точку данных в feed. value приводится к строке (FormatValue).
func (c *Client) SendData(ctx context.Context, feedKey string, value any, opts SendOptions) (*DataPoint, error) {
	body := dataBody{
		Lat: opts.Lat,
		Lon: opts.Lon,
		Ele: opts.Ele,
	}
	if opts.CreatedAt != nil {
		body.CreatedAt = formatTime(*opts.CreatedAt)
	}

	s, valueErr := FormatValue(value)
	body.Value = s

	var point DataPoint
	err := c.call(ctx, call{
		op:       "send_data",
		method:   http.MethodPost,
		scoped:   true,
		segments: []string{"feeds", feedKey, "data"},
		required: map[string]string{"feed key": feedKey},
		argErr:   valueErr,
		body:     body,
	}, &point)
	return resultOrNil(&point, err)
}

// GetData возвращает точку данных по идентификатору.
func (c *Client) GetData(ctx context.Context, feedKey, dataID string) (*DataPoint, error) {
	var point DataPoint
	err := c.call(ctx, call{
		op:       "get_data",
		method:   http.MethodGet,
		scoped:   true,
		segments: []string{"feeds", feedKey, "data", dataID},
		required: map[string]string{"feed key": feedKey, "data id": dataID},
	}, &point)
	return resultOrNil(&point, err)
}

// ListData возвращает точки данных feed в пределах limit и временного окна.
// Результат не обрезается на клиенте: сколько вернул сервер, столько и отдаём.
func (c *Client) ListData(ctx context.Context, feedKey string, opts ListDataOptions) ([]DataPoint, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultDataLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if opts.StartTime != nil {
		params.Set("start_time", formatTime(*opts.StartTime))
	}
	if opts.EndTime != nil {
		params.Set("end_time", formatTime(*opts.EndTime))
	}

	var points []DataPoint
	err := c.call(ctx, call{
		op:       "list_data",
		method:   http.MethodGet,
		scoped:   true,
		segments: []string{"feeds", feedKey, "data"},
		required: map[string]string{"feed key": feedKey},
		query:    params,
	}, &points)
	if err != nil {
		return nil, err
	}
	return points, nil
}

// --- Dashboards ---

// ListDashboards возвращает все dashboards аккаунта.
func (c *Client) ListDashboards(ctx context.Context) ([]Dashboard, error) {
	var dashboards []Dashboard
	err := c.call(ctx, call{
		op:       "list_dashboards",
		method:   http.MethodGet,
		scoped:   true,
		segments: []string{"dashboards"},
	}, &dashboards)
	if err != nil {
		return nil, err
	}
	return dashboards, nil
}

// GetDashboard возвращает dashboard по ключу.
func (c *Client) GetDashboard(ctx context.Context, dashboardKey string) (*Dashboard, error) {
	var dashboard Dashboard
	err := c.call(ctx, call{
		op:       "get_dashboard",
		method:   http.MethodGet,
		scoped:   true,
		segments: []string{"dashboards", dashboardKey},
		required: map[string]string{"dashboard key": dashboardKey},
	}, &dashboard)
	return resultOrNil(&dashboard, err)
}

// CreateDashboard создаёт dashboard.
func (c *Client) CreateDashboard(ctx context.Context, req CreateDashboardRequest) (*Dashboard, error) {
	var dashboard Dashboard
	err := c.call(ctx, call{
		op:       "create_dashboard",
		method:   http.MethodPost,
		scoped:   true,
		segments: []string{"dashboards"},
		required: map[string]string{"dashboard name": req.Name},
		body: dashboardBody{
			Name:        req.Name,
			Description: req.Description,
		},
	}, &dashboard)
	return resultOrNil(&dashboard, err)
}

// --- HTTP helpers ---

// call описывает один вызов API.
type call struct {
	op     string
	method string

	// scoped — путь в пространстве аккаунта: /{username}/segments...
	scoped   bool
	segments []string

	// required — обязательные аргументы (имя → значение).
	required map[string]string
	// argErr — ошибка подготовки аргументов, выявленная до вызова.
	argErr error

	query url.Values
	body  any
}

func (c *Client) call(ctx context.Context, r call, result any) error {
	start := time.Now()
	err := c.roundTrip(ctx, r, result)

	if c.observer != nil {
		outcome := "ok"
		if err != nil {
			outcome = KindOf(err).String()
		}
		c.observer.ObserveRequest(r.op, outcome, time.Since(start))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, r call, result any) error {
	// Учётные данные проверяются первыми: без них запрос не уходит.
	creds := c.creds.Get()
	if !creds.Complete() {
		return &Error{Kind: KindNotConfigured}
	}

	if err := checkArgs(r); err != nil {
		return &Error{Kind: KindUnknown, Err: err}
	}

	endpoint, err := buildURL(creds, r)
	if err != nil {
		return &Error{Kind: KindUnknown, Err: err}
	}

	req, err := newRequest(ctx, r.method, endpoint, r.body)
	if err != nil {
		return &Error{Kind: KindUnknown, Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set(HeaderKey, creds.APIKey)
	req.Header.Set(HeaderRequestID, requestID)

	logger := c.logger.With(
		"request_id", requestID,
		"op", r.op,
		"method", r.method,
		"path", req.URL.Path,
	)
	logger.DebugContext(ctx, "api request")

	start := time.Now()
	body, status, err := send(c.httpClient, req)
	if err == nil {
		err = decode(body, result)
	}

	if err != nil {
		normalized := normalize(err)
		logger.DebugContext(ctx, "api request failed",
			"status", status,
			"kind", normalized.Kind.String(),
			"duration", time.Since(start),
			"error", err,
		)
		return normalized
	}

	logger.DebugContext(ctx, "api request completed",
		"status", status,
		"duration", time.Since(start),
	)
	return nil
}

func checkArgs(r call) error {
	for name, value := range r.required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingArgument, name)
		}
	}
	return r.argErr
}

// buildURL собирает адрес запроса; сегменты пути экранируются.
func buildURL(creds config.Credentials, r call) (string, error) {
	base := creds.BaseURL
	if base == "" {
		base = config.DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host required", base)
	}

	segments := r.segments
	if r.scoped {
		segments = append([]string{creds.Username}, segments...)
	}

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}

	return u.String() + "/" + strings.Join(escaped, "/") + encodeQuery(r.query), nil
}

func encodeQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func resultOrNil[T any](v *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
