package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/salesdash/app/services"
	"github.com/shashiranjanraj/salesdash/pkg/ctx"
)

type StatisticsController struct {
	service *services.StatisticsService
}

func NewStatisticsController(service *services.StatisticsService) *StatisticsController {
	return &StatisticsController{service: service}
}

// ByMonth handles GET /api/statisticsByMonth?month=.
func (sc *StatisticsController) ByMonth(c *ctx.Context) {
	month, err := services.ParseMonth(c.Query("month"))
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}

	stats, err := sc.service.ByMonth(c.Context(), month)
	if err != nil {
		if services.IsValidation(err) {
			c.Error(http.StatusBadRequest, err.Error())
			return
		}
		c.ServerError("Error fetching statistics.", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
