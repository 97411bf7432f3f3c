package repo

import (
	"context"

	"github.com/Skotchmaster/file_drive/internal/models"
)

func (r *GormRepo) FindFileByName(ctx context.Context, filename string) (*models.File, error) {
	var file models.File
	if err := r.DB.WithContext(ctx).Where("filename = ?", filename).First(&file).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r *GormRepo) CreateFile(ctx context.Context, f *models.File) error {
	candidate := *f
	tx := r.DB.WithContext(ctx).Where("filename = ?", f.Filename).FirstOrCreate(&candidate)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	*f = candidate
	return nil
}

// DeleteFileByName reports how many metadata rows were removed; objects
// uploaded outside the API have none.
func (r *GormRepo) DeleteFileByName(ctx context.Context, filename string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("filename = ?", filename).Delete(&models.File{})
	return res.RowsAffected, res.Error
}
