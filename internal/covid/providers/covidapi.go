package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/covid-stats/internal/common"
	"github.com/i474232898/covid-stats/internal/covid"
)

// DefaultCovidAPIURL is the public reports endpoint.
const DefaultCovidAPIURL = "https://covid-api.com/api/reports"

// CovidAPIProvider implements the covid.Provider interface for covid-api.com.
type CovidAPIProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewCovidAPIProvider(client *http.Client, baseURL string, backoff BackoffConfig) *CovidAPIProvider {
	if baseURL == "" {
		baseURL = DefaultCovidAPIURL
	}

	return &CovidAPIProvider{
		name:    "covid-api",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("covid-api", backoff),
	}
}

func (p *CovidAPIProvider) Name() string {
	return p.name
}

type reportPayload struct {
	Date          string  `json:"date"`
	Confirmed     int64   `json:"confirmed"`
	Deaths        int64   `json:"deaths"`
	Recovered     *int64  `json:"recovered"`
	ConfirmedDiff int64   `json:"confirmed_diff"`
	DeathsDiff    int64   `json:"deaths_diff"`
	RecoveredDiff int64   `json:"recovered_diff"`
	LastUpdate    string  `json:"last_update"`
	Active        int64   `json:"active"`
	ActiveDiff    int64   `json:"active_diff"`
	FatalityRate  float64 `json:"fatality_rate"`
	Region        struct {
		ISO      string  `json:"iso"`
		Name     string  `json:"name"`
		Province string  `json:"province"`
		Lat      *string `json:"lat"`
		Long     *string `json:"long"`
	} `json:"region"`
}

// FetchReports returns every report the API holds for day.
func (p *CovidAPIProvider) FetchReports(ctx context.Context, day time.Time) ([]covid.Report, error) {
	date := common.FormatDay(day)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("date", date)

		u := p.baseURL + "?" + values.Encode()
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Data []reportPayload `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, goerr.Wrap(err, "failed to decode reports payload",
			goerr.V("date", date),
			goerr.T(covid.ErrTagDecode))
	}

	reports := make([]covid.Report, 0, len(payload.Data))
	for i, item := range payload.Data {
		d, err := common.ParseStampDay(item.Date)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid report date",
				goerr.V("date", date),
				goerr.V("index", i),
				goerr.V("value", item.Date),
				goerr.T(covid.ErrTagDecode))
		}

		reports = append(reports, covid.Report{
			Date: d,
			Region: covid.Region{
				ISO:      item.Region.ISO,
				Name:     item.Region.Name,
				Province: item.Region.Province,
				Lat:      deref(item.Region.Lat),
				Long:     deref(item.Region.Long),
			},
			Confirmed:     item.Confirmed,
			Deaths:        item.Deaths,
			Recovered:     item.Recovered,
			ConfirmedDiff: item.ConfirmedDiff,
			DeathsDiff:    item.DeathsDiff,
			RecoveredDiff: item.RecoveredDiff,
			Active:        item.Active,
			ActiveDiff:    item.ActiveDiff,
			FatalityRate:  item.FatalityRate,
			LastUpdate:    item.LastUpdate,
		})
	}

	return reports, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
