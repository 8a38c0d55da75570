package application

import (
	"time"

	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	"github.com/mateusmacedo/van-bff/pkg/domain"
)

const (
	BookStopCommandName      = "BookStop"
	BookRoundTripCommandName = "BookRoundTrip"
)

// BookStopData contém os dados necessários para reservar uma parada em uma viagem.
type BookStopData struct {
	UserID    uint
	AddressID uint
	TripID    uint
	Date      time.Time
}

type bookStopCommand struct {
	data BookStopData
}

func (c bookStopCommand) CommandName() string {
	return BookStopCommandName
}

func (c bookStopCommand) Payload() BookStopData {
	return c.data
}

func NewBookStopCommand(data BookStopData) domain.Command[BookStopData] {
	return bookStopCommand{data: data}
}

// BookRoundTripData reserva a ida e a volta de um dia, cada uma com o seu endereço.
type BookRoundTripData struct {
	UserID         uint
	Date           time.Time
	IdaAddressID   uint
	VoltaAddressID uint
}

type bookRoundTripCommand struct {
	data BookRoundTripData
}

func (c bookRoundTripCommand) CommandName() string {
	return BookRoundTripCommandName
}

func (c bookRoundTripCommand) Payload() BookRoundTripData {
	return c.data
}

func NewBookRoundTripCommand(data BookRoundTripData) domain.Command[BookRoundTripData] {
	return bookRoundTripCommand{data: data}
}

type (
	BookStopBus      = pkgApp.CommandBus[domain.Command[BookStopData], BookStopData]
	BookRoundTripBus = pkgApp.CommandBus[domain.Command[BookRoundTripData], BookRoundTripData]
)
