package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/repository"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	model := userModel{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		Role:         user.Role.String(),
		Active:       user.Active,
		Code:         user.Code,
	}
	if err := getTx(ctx, r.db).Create(&model).Error; err != nil {
		return apperrors.NewPersistenceError(err)
	}
	user.ID = model.ID
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var model userModel
	if err := getTx(ctx, r.db).First(&model, id).Error; err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": id})
	}
	return model.toDomain()
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model userModel
	if err := getTx(ctx, r.db).Where("username = ?", username).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"username": username})
	}
	return model.toDomain()
}

func (r *userRepository) FindByCode(ctx context.Context, code string) (*domain.User, error) {
	var model userModel
	if err := getTx(ctx, r.db).Where("code = ? AND code <> ''", code).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"code": code})
	}
	return model.toDomain()
}

func (r *userRepository) FindTicketCreator(ctx context.Context, ticketID int64) (*domain.User, error) {
	var model userModel
	err := getTx(ctx, r.db).
		Joins("JOIN tickets t ON t.creator_id = users.id").
		Where("t.id = ?", ticketID).
		First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"ticket_id": ticketID})
	}
	return model.toDomain()
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var models []userModel
	if err := getTx(ctx, r.db).Order("name ASC").Find(&models).Error; err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		user, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

func (r *userRepository) Activate(ctx context.Context, id int64, passwordHash string) error {
	result := getTx(ctx, r.db).Model(&userModel{}).Where("id = ?", id).Updates(map[string]any{
		"password_hash": passwordHash,
		"active":        true,
		"code":          "",
	})
	return requireOneRow(result, "user", map[string]any{"user_id": id})
}

func (r *userRepository) ListNamesByRole(ctx context.Context, role domain.Role) ([]domain.UserName, error) {
	var models []userModel
	err := getTx(ctx, r.db).
		Select("id", "name").
		Where("role = ? AND active = ?", role.String(), true).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	names := make([]domain.UserName, 0, len(models))
	for _, m := range models {
		names = append(names, domain.UserName{ID: m.ID, Name: m.Name})
	}
	return names, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := getTx(ctx, r.db).Model(&userModel{}).Count(&count).Error; err != nil {
		return 0, apperrors.NewPersistenceError(err)
	}
	return count, nil
}

func (m userModel) toDomain() (*domain.User, error) {
	role, err := domain.ParseRole(m.Role)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Role:         role,
		Active:       m.Active,
		Code:         m.Code,
	}, nil
}
