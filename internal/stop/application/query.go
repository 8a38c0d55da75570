package application

import (
	"time"

	vanDomain "github.com/mateusmacedo/van-bff/internal/domain"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	"github.com/mateusmacedo/van-bff/pkg/domain"
)

const FindUserStopsQueryName = "FindUserStops"

type FindUserStopsData struct {
	UserID uint
	Date   time.Time
}

type findUserStopsQuery struct {
	data FindUserStopsData
}

func (q findUserStopsQuery) QueryName() string {
	return FindUserStopsQueryName
}

func (q findUserStopsQuery) Payload() FindUserStopsData {
	return q.data
}

func NewFindUserStopsQuery(data FindUserStopsData) domain.Query[FindUserStopsData] {
	return findUserStopsQuery{data: data}
}

type QueryBus = pkgApp.QueryBus[domain.Query[FindUserStopsData], FindUserStopsData, []vanDomain.Stop]
