package application

import (
	"time"

	vanDomain "github.com/mateusmacedo/van-bff/internal/domain"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	"github.com/mateusmacedo/van-bff/pkg/domain"
)

const FindTripsByDateQueryName = "FindTripsByDate"

// FindTripsByDateData contém o dia consultado.
type FindTripsByDateData struct {
	Date time.Time
}

type findTripsByDateQuery struct {
	data FindTripsByDateData
}

func (q findTripsByDateQuery) QueryName() string {
	return FindTripsByDateQueryName
}

func (q findTripsByDateQuery) Payload() FindTripsByDateData {
	return q.data
}

func NewFindTripsByDateQuery(data FindTripsByDateData) domain.Query[FindTripsByDateData] {
	return findTripsByDateQuery{data: data}
}

type QueryBus = pkgApp.QueryBus[domain.Query[FindTripsByDateData], FindTripsByDateData, []vanDomain.TripSummary]
