package service

import (
	"context"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/syncerr"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
)

type ICategoryService interface {
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id int64) error
	GetCategories(ctx context.Context) ([]dto.CategoryResponse, error)
}

type categoryService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewCategoryService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ICategoryService {
	return &categoryService{
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.CategoryRepository()

	if existing, err := repo.FindOne(ctx, specification.ByName{Name: req.Name}); err != nil {
		return nil, err
	} else if existing != nil {
		// Names are unique; creating an existing name returns it.
		return &dto.CategoryResponse{Id: existing.Id, Name: existing.Name}, nil
	}

	category := &entity.Category{Name: req.Name}
	if err := repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{Id: category.Id, Name: category.Name}, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	if req.Id == entity.UnfiledCategoryId {
		return nil, syncerr.Wrap(syncerr.ErrMalformedInput, "the reserved category cannot be renamed")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.CategoryRepository()

	category, err := repo.FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, syncerr.Wrap(syncerr.ErrSourceUnavailable, "category not found")
	}

	category.Name = req.Name
	if err := repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{Id: category.Id, Name: category.Name}, nil
}

// DeleteCategory removes a category and reparents its notes to Unfiled so no
// note is ever orphaned. The reserved category itself cannot be deleted.
func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {
	if id == entity.UnfiledCategoryId {
		return syncerr.Wrap(syncerr.ErrMalformedInput, "the reserved category cannot be deleted")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().ReassignCategory(ctx, id, entity.UnfiledCategoryId); err != nil {
		return err
	}
	if err := uow.CategoryRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *categoryService) GetCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	categories, err := uow.CategoryRepository().FindAll(ctx, specification.OrderById{})
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, dto.CategoryResponse{Id: c.Id, Name: c.Name})
	}
	return out, nil
}
