package repository

import (
	"github.com/gatherly/gatherly/internal/domain/community"
	"github.com/gatherly/gatherly/internal/domain/owner"
	"github.com/gatherly/gatherly/internal/logger"
	repo "github.com/gatherly/gatherly/internal/repository/gorm"
	"gorm.io/gorm"
)

func NewOwnerRepository(db *gorm.DB, logger *logger.Logger) owner.Repository {
	return repo.NewOwnerRepository(db, logger)
}

func NewCommunityRepository(db *gorm.DB, logger *logger.Logger) community.Repository {
	return repo.NewCommunityRepository(db, logger)
}
