package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

// AddressInput traz os campos de endereço; vazios não sobrescrevem.
type AddressInput struct {
	AddressID    uint
	Type         string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
}

type UpdateInput struct {
	Name      string
	Email     string
	CPF       string
	Phone     string
	Birthdate *time.Time
	Address   *AddressInput
}

type Service struct {
	db        *gorm.DB
	users     domain.UserRepository
	addresses domain.AddressRepository
	stops     domain.StopRepository
	logger    pkgApp.AppLogger
}

func NewService(db *gorm.DB, users domain.UserRepository, addresses domain.AddressRepository, stops domain.StopRepository, logger pkgApp.AppLogger) *Service {
	return &Service{db: db, users: users, addresses: addresses, stops: stops, logger: logger}
}

// Get devolve o usuário com os seus endereços.
func (s *Service) Get(ctx context.Context, userID uint) (*domain.User, error) {
	return s.load(ctx, nil, userID)
}

func (s *Service) load(ctx context.Context, tx *gorm.DB, userID uint) (*domain.User, error) {
	user, err := s.users.Get(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	addresses, err := s.addresses.FindByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	user.Addresses = addresses
	return user, nil
}

// Update mescla os campos do usuário e, quando informado, atualiza o endereço
// pelo id, pelo tipo ou cria um novo. Tudo na mesma transação.
func (s *Service) Update(ctx context.Context, userID uint, in UpdateInput) (*domain.User, error) {
	var updated *domain.User
	err := infrastructure.RunInTx(ctx, s.db, nil, func(tx *gorm.DB) error {
		user, err := s.users.Get(ctx, tx, userID)
		if err != nil {
			return err
		}

		fields, err := s.userChanges(ctx, tx, user, in)
		if err != nil {
			return err
		}
		if err := s.users.UpdateFields(ctx, tx, userID, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrEmailTaken()
			}
			return err
		}

		if in.Address != nil {
			if _, err := s.upsertAddress(ctx, tx, userID, *in.Address); err != nil {
				return err
			}
		}

		updated, err = s.load(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	pkgApp.LogInfo(ctx, s.logger, "profile updated", map[string]interface{}{"user_id": userID})
	return updated, nil
}

func (s *Service) userChanges(ctx context.Context, tx *gorm.DB, user *domain.User, in UpdateInput) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if name := strings.TrimSpace(in.Name); name != "" && name != user.Name {
		fields["name"] = name
	}
	if in.CPF != "" && in.CPF != user.CPF {
		fields["cpf"] = in.CPF
	}
	if in.Phone != "" && in.Phone != user.Phone {
		fields["phone"] = in.Phone
	}
	if in.Birthdate != nil {
		fields["birthdate"] = *in.Birthdate
	}
	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" && email != user.Email {
		other, err := s.users.FindByEmail(ctx, tx, email)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, apperr.ErrEmailTaken()
		}
		fields["email"] = email
	}
	return fields, nil
}

func (s *Service) upsertAddress(ctx context.Context, tx *gorm.DB, userID uint, in AddressInput) (*domain.Address, error) {
	var current *domain.Address
	switch {
	case in.AddressID != 0:
		found, err := s.addresses.Get(ctx, tx, in.AddressID)
		if err != nil {
			return nil, err
		}
		if found.UserID != userID {
			return nil, apperr.ErrAddressNotOwned()
		}
		current = found
	case in.Type != "":
		found, err := s.addresses.FindByUserAndType(ctx, tx, userID, in.Type)
		if err != nil {
			return nil, err
		}
		current = found
	}

	if current == nil {
		address := newAddress(userID, in)
		if address.Type == "" || address.Street == "" || address.City == "" {
			return nil, apperr.Validation("Tipo, rua e cidade são obrigatórios para um novo endereço")
		}
		if err := s.addresses.Create(ctx, tx, address); err != nil {
			return nil, err
		}
		return address, nil
	}

	mergeAddress(current, in)
	if err := s.addresses.Update(ctx, tx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) ListAddresses(ctx context.Context, userID uint) ([]domain.Address, error) {
	return s.addresses.FindByUser(ctx, nil, userID)
}

func (s *Service) AddAddress(ctx context.Context, userID uint, in AddressInput) (*domain.Address, error) {
	in.AddressID = 0
	address := newAddress(userID, in)
	if _, err := s.users.Get(ctx, nil, userID); err != nil {
		return nil, err
	}
	if err := s.addresses.Create(ctx, nil, address); err != nil {
		return nil, err
	}
	pkgApp.LogInfo(ctx, s.logger, "address added", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.AddressID,
	})
	return address, nil
}

// DeleteAddress remove o endereço e as paradas que embarcam nele. Endereços de
// outros usuários são tratados como inexistentes.
func (s *Service) DeleteAddress(ctx context.Context, userID, addressID uint) error {
	return infrastructure.RunInTx(ctx, s.db, nil, func(tx *gorm.DB) error {
		address, err := s.addresses.Get(ctx, tx, addressID)
		if err != nil {
			return err
		}
		if address.UserID != userID {
			return apperr.ErrAddressNotFound()
		}
		if err := s.stops.DeleteByAddress(ctx, tx, addressID); err != nil {
			return err
		}
		return s.addresses.Delete(ctx, tx, addressID)
	})
}

func newAddress(userID uint, in AddressInput) *domain.Address {
	return &domain.Address{
		UserID:       userID,
		Type:         strings.TrimSpace(in.Type),
		Street:       in.Street,
		Number:       in.Number,
		Complement:   in.Complement,
		Neighborhood: in.Neighborhood,
		City:         in.City,
		State:        strings.ToUpper(in.State),
		ZipCode:      in.ZipCode,
	}
}

func mergeAddress(current *domain.Address, in AddressInput) {
	set := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}
	set(&current.Type, strings.TrimSpace(in.Type))
	set(&current.Street, in.Street)
	set(&current.Number, in.Number)
	set(&current.Complement, in.Complement)
	set(&current.Neighborhood, in.Neighborhood)
	set(&current.City, in.City)
	set(&current.State, strings.ToUpper(in.State))
	set(&current.ZipCode, in.ZipCode)
}
