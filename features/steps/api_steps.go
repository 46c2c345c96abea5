//go:build integration

package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"yt-subtitles-loader/cmd"
	"yt-subtitles-loader/infrastructure/config"
	"yt-subtitles-loader/infrastructure/httpapi"

	"github.com/cucumber/godog"
)

// apiContext reuses the extract scenario's fake yt-dlp behind the HTTP handler
type apiContext struct {
	server   config.ServerConfig
	api      http.Handler
	recorder *httptest.ResponseRecorder
}

var SharedAPIContext = &apiContext{}

func InitializeAPIScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedAPIContext

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedAPIContext = &apiContext{}
		return c, nil
	})

	ctx.Step(`^the API allows (\d+) requests? in a burst$`, testCtx.theAPIAllowsRequestsInABurst)
	ctx.Step(`^I POST the link "([^"]*)" to the API$`, testCtx.iPOSTTheLinkToTheAPI)
	ctx.Step(`^I POST the body '([^']*)' to the API$`, testCtx.iPOSTTheBodyToTheAPI)
	ctx.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseFieldShouldBe)
}

func (a *apiContext) theAPIAllowsRequestsInABurst(burst int) error {
	a.server = config.ServerConfig{RequestsPerSecond: 0.001, Burst: burst}
	return nil
}

// handler is built on first use so the limiter persists across requests of a scenario
func (a *apiContext) handler() http.Handler {
	if a.api == nil {
		server := a.server
		if server.Burst == 0 {
			server = config.Defaults().Server
		}
		a.api = cmd.NewAPIHandler(SharedExtractContext.extractor(), server, nil)
	}
	return a.api
}

func (a *apiContext) iPOSTTheLinkToTheAPI(link string) error {
	body, err := json.Marshal(httpapi.LoadRequest{YoutubeLink: link})
	if err != nil {
		return err
	}
	return a.iPOSTTheBodyToTheAPI(string(body))
}

func (a *apiContext) iPOSTTheBodyToTheAPI(body string) error {
	req := httptest.NewRequest(http.MethodPost, httpapi.LoadSubtitlesPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	a.recorder = httptest.NewRecorder()
	a.handler().ServeHTTP(a.recorder, req)
	return nil
}

func (a *apiContext) theResponseStatusShouldBe(status int) error {
	if a.recorder == nil {
		return fmt.Errorf("no request was made")
	}
	if a.recorder.Code != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, a.recorder.Code, a.recorder.Body.String())
	}
	return nil
}

func (a *apiContext) theResponseFieldShouldBe(field, expected string) error {
	var body map[string]any
	if err := json.Unmarshal(a.recorder.Body.Bytes(), &body); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	got, ok := body[field]
	if !ok {
		return fmt.Errorf("response has no field %q: %s", field, a.recorder.Body.String())
	}
	if fmt.Sprint(got) != expected {
		return fmt.Errorf("expected %s %q, got %q", field, expected, got)
	}
	return nil
}
