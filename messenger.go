package messenger

import (
	"net/http"

	"github.com/goliatone/go-messenger/adapters/gocommand"
	"github.com/goliatone/go-messenger/adapters/gologger"
	"github.com/goliatone/go-messenger/core"
	"github.com/goliatone/go-messenger/inbound"
	"github.com/goliatone/go-messenger/transport"
	"github.com/goliatone/go-messenger/webhooks"
)

type Config = core.Config

type Option = core.Option

type Client = core.Client

type Message = core.Message
type Person = core.Person
type SendMessageRequest = core.SendMessageRequest
type RequestDescriptor = core.RequestDescriptor
type WebhookRequest = core.WebhookRequest

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithTransport       = core.WithTransport
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithClock           = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// Messenger bundles a Graph API client with the webhook dispatcher that
// serves it. Subscribers register on Subscribers().
type Messenger struct {
	client     *core.Client
	registry   *inbound.Registry
	dispatcher *webhooks.Dispatcher
}

// Setup builds the client over the REST transport (unless WithTransport
// overrides it) and a dispatcher that reads the client's live config, so a
// rotated token is picked up by the next webhook request.
func Setup(cfg Config, opts ...Option) (*Messenger, error) {
	options := make([]Option, 0, len(opts)+1)
	options = append(options, core.WithTransport(transport.NewRESTAdapter(nil)))
	options = append(options, opts...)

	client, err := core.NewClient(cfg, options...)
	if err != nil {
		return nil, err
	}
	deps := client.Dependencies()
	_, logger := gologger.ResolveComponent("webhooks", deps.LoggerProvider, nil)

	registry := inbound.NewRegistry()
	dispatcher := webhooks.NewDispatcher(client, registry,
		webhooks.WithLogger(logger),
		webhooks.WithMetricsRecorder(deps.MetricsRecorder),
	)
	return &Messenger{
		client:     client,
		registry:   registry,
		dispatcher: dispatcher,
	}, nil
}

func (m *Messenger) Client() *core.Client {
	if m == nil {
		return nil
	}
	return m.client
}

func (m *Messenger) Subscribers() *inbound.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Messenger) Dispatcher() *webhooks.Dispatcher {
	if m == nil {
		return nil
	}
	return m.dispatcher
}

// Handler returns the webhook endpoint to mount on a router.
func (m *Messenger) Handler(opts ...webhooks.HandlerOption) http.Handler {
	if m == nil {
		return webhooks.Handler(nil, opts...)
	}
	return webhooks.Handler(m.dispatcher, opts...)
}

// RegisterCommands exposes the client through go-command messages.
func (m *Messenger) RegisterCommands(adapter *gocommand.RegistryAdapter) (*gocommand.Registration, error) {
	if m == nil {
		return gocommand.Register(adapter, nil)
	}
	return gocommand.Register(adapter, m.client)
}
