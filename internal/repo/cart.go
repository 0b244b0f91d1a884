package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/favcart/internal/models"
)

// GetCart returns the lines in insertion order with products joined. Lines
// whose product was deleted come back with a nil Product.
func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items := []models.CartItem{}
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Preload("Product.SoldBy", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "full_name")
		}).
		Where("user_id = ?", userID).
		Order("created_at").Order("id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart inserts a line or adds quantity to the existing one in a single
// statement. The merge only happens while the sum stays within
// models.MaxCartQuantity, otherwise nothing changes and ErrQuantityLimit is
// returned. quantity must already be in 1..MaxCartQuantity.
func (r *GormRepo) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	item := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	res := r.DB.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("cart_items.quantity + excluded.quantity")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
			},
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("cart_items.quantity <= ?", models.MaxCartQuantity-quantity),
			}},
		}).
		Create(&item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuantityLimit
	}
	return nil
}

// RemoveFromCart is a no-op when the line does not exist.
func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

// SetCartQuantity returns gorm.ErrRecordNotFound when there is no line to update.
func (r *GormRepo) SetCartQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CartEntries returns raw lines without the product join.
func (r *GormRepo) CartEntries(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items := []models.CartItem{}
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").Order("id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
