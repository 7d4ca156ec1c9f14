package telegram

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"

	"github.com/ferux/pushcenter/internal/config"
	"github.com/ferux/pushcenter/internal/fcontext"
	"github.com/ferux/pushcenter/internal/model"
)

// DefaultAPI is the bot api endpoint.
const DefaultAPI = "https://api.telegram.org"

// Client for sending operator notifications to telegram.
type Client interface {
	SendMessage(ctx context.Context, text string) error
}

type clientNoop struct{}

func (clientNoop) SendMessage(_ context.Context, _ string) error {
	return nil
}

type client struct {
	c      *http.Client
	api    string
	key    string
	chatID string
	logger zerolog.Logger
}

// New creates new telegram client. Without api key or chat id it does nothing.
func New(cfg config.NotifyTelegram, hc *http.Client, logger zerolog.Logger) Client {
	if len(cfg.API) == 0 || len(cfg.ChatID) == 0 {
		return clientNoop{}
	}

	if hc == nil {
		hc = &http.Client{Timeout: time.Second * 10}
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultAPI
	}

	return &client{
		c:      hc,
		api:    strings.TrimRight(endpoint, "/"),
		key:    cfg.API,
		chatID: cfg.ChatID,
		logger: logger.With().Str("pkg", "telegram").Logger(),
	}
}

func (client *client) SendMessage(ctx context.Context, text string) (err error) {
	logger := client.logger.With().Str("request_id", fcontext.RequestID(ctx)).Logger()

	if len(text) == 0 {
		return model.Error("text is empty")
	}

	requestURL := fmt.Sprintf("%s/bot%s/sendMessage", client.api, client.key)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("making new request: %w", err)
	}

	values := request.URL.Query()
	values.Set("chat_id", client.chatID)
	values.Set("text", text)

	request.URL.RawQuery = values.Encode()

	response, err := client.c.Do(request)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	responseData, err := ioutil.ReadAll(response.Body)
	// I don't care about error here
	_ = response.Body.Close()

	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	v, err := fastjson.ParseBytes(responseData)
	if err != nil {
		logger.Error().Err(err).Msg("unable to parse response")

		return fmt.Errorf("parsing response: %w", err)
	}

	if !v.GetBool("ok") {
		return fmt.Errorf("telegram error %d: %w", v.GetInt("error_code"), model.Error(v.GetStringBytes("description")))
	}

	logger.Debug().Int("message_id", v.GetInt("result", "message_id")).Msg("notification delivered")

	return nil
}
