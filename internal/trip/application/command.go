package application

import (
	"time"

	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	"github.com/mateusmacedo/van-bff/pkg/domain"
)

const CreateDailyTripsCommandName = "CreateDailyTrips"

// CreateDailyTripsData contém o dia para o qual o par ida/volta deve existir.
type CreateDailyTripsData struct {
	Date time.Time
}

// createDailyTripsCommand é uma implementação privada do comando de criação diária.
type createDailyTripsCommand struct {
	data CreateDailyTripsData
}

func (c createDailyTripsCommand) CommandName() string {
	return CreateDailyTripsCommandName
}

func (c createDailyTripsCommand) Payload() CreateDailyTripsData {
	return c.data
}

func NewCreateDailyTripsCommand(data CreateDailyTripsData) domain.Command[CreateDailyTripsData] {
	return createDailyTripsCommand{data: data}
}

type CommandBus = pkgApp.CommandBus[domain.Command[CreateDailyTripsData], CreateDailyTripsData]
