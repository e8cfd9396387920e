package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/covid-stats/internal/common"
	"github.com/i474232898/covid-stats/internal/covid"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type countryOption struct {
	Name     string
	Selected bool
}

type pageData struct {
	Countries []countryOption
	Start     string
	End       string
	MinDate   string
	MaxDate   string
	Error     string
	Info      string
	Dashboard template.JS
}

// dashboardPage renders the interactive page. Missing parameters fall back to
// the first country and the full picker range.
func dashboardPage(service *covid.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		countries, err := service.Countries()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list countries")
		}

		q, dateErr := pageQuery(c, countries)
		data := pageData{
			Start:   common.FormatDay(q.Start),
			End:     common.FormatDay(q.End),
			MinDate: common.FormatDay(covid.MinDate),
			MaxDate: common.FormatDay(covid.MaxDate),
		}

		selected := make(map[string]bool, len(q.Countries))
		for _, name := range q.Countries {
			selected[name] = true
		}
		for _, name := range countries {
			data.Countries = append(data.Countries, countryOption{Name: name, Selected: selected[name]})
		}

		var dashboard covid.Dashboard
		if dateErr == nil {
			dashboard, err = service.Build(q)
		}
		var qe *covid.QueryError
		switch {
		case dateErr != nil:
			data.Error = dateErr.Error()
		case err == nil:
			raw, err := json.Marshal(dashboard)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to encode dashboard")
			}
			data.Dashboard = template.JS(raw)
		case errors.As(err, &qe) && qe.Info:
			data.Info = qe.Message
		case errors.As(err, &qe):
			data.Error = qe.Message
		case errors.Is(err, covid.ErrNoData):
			data.Info = "No data for the selected countries and date range."
		default:
			log.WithField("prefix", "http").WithError(err).Error("failed to build dashboard")
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build dashboard")
		}

		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, data); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
		}

		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}

var errPageDate = errors.New("Error: Dates must use the YYYY-MM-DD format.")

// pageQuery reads the form parameters, substituting defaults for anything
// missing. A malformed date leaves the picker default in place and returns
// errPageDate.
func pageQuery(c *fiber.Ctx, countries []string) (covid.Query, error) {
	start, startErr := dateOrDefault(c.Query("start"), covid.MinDate)
	end, endErr := dateOrDefault(c.Query("end"), covid.MaxDate)
	q := covid.Query{
		Countries: queryValues(c, "countries"),
		Start:     start,
		End:       end,
	}

	// A submitted form carries the date fields; only a first visit gets the
	// default selection.
	if len(q.Countries) == 0 && c.Query("start") == "" && len(countries) > 0 {
		q.Countries = []string{countries[0]}
	}
	if startErr != nil || endErr != nil {
		return q, errPageDate
	}
	return q, nil
}

func dateOrDefault(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	d, err := common.ParseDay(s)
	if err != nil {
		return def, err
	}
	return d, nil
}
