package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/covid-stats/internal/common"
	"github.com/i474232898/covid-stats/internal/covid"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *covid.Service) {
	app.Get("/", dashboardPage(service))

	v1 := app.Group("/api/v1")

	v1.Get("/countries", func(c *fiber.Ctx) error {
		countries, err := service.Countries()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list countries")
		}
		return c.JSON(fiber.Map{
			"countries": countries,
		})
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		var req dashboardQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		dashboard, err := service.Build(req.toQuery())
		if err != nil {
			var qe *covid.QueryError
			switch {
			case errors.As(err, &qe):
				return fiber.NewError(fiber.StatusBadRequest, qe.Message)
			case errors.Is(err, covid.ErrNoData):
				return fiber.NewError(fiber.StatusNotFound, "no covid data for requested countries and range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build dashboard")
		}

		return c.JSON(dashboard)
	})
}

// dashboardQuery holds query parameters shared by the page and the JSON API.
// Range and selection rules live in covid.ValidateQuery; the tags here only
// cover well-formedness.
type dashboardQuery struct {
	Countries []string  `validate:"dive,required"`
	Start     time.Time `validate:"required"`
	End       time.Time `validate:"required"`
}

func (q dashboardQuery) toQuery() covid.Query {
	return covid.Query{
		Countries: q.Countries,
		Start:     q.Start,
		End:       q.End,
	}
}

func (q *dashboardQuery) bind(c *fiber.Ctx) error {
	q.Countries = queryValues(c, "countries")

	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr == "" || endStr == "" {
		return errors.New("start and end query parameters are required")
	}

	start, err := parseDate(startStr)
	if err != nil {
		return err
	}
	end, err := parseDate(endStr)
	if err != nil {
		return err
	}

	q.Start = start
	q.End = end
	return nil
}

// queryValues returns every value of a repeated query parameter. Country
// names may contain commas, so values are never split.
func queryValues(c *fiber.Ctx, key string) []string {
	var out []string
	for _, v := range c.Context().QueryArgs().PeekMulti(key) {
		if len(v) > 0 {
			out = append(out, string(v))
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	d, err := common.ParseDay(s)
	if err != nil {
		return time.Time{}, errors.New("invalid date format; use YYYY-MM-DD")
	}
	return d, nil
}
