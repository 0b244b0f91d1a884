package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/favcart/internal/models"
)

type SignupRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName   *string `json:"fullName,omitempty" validate:"omitempty,min=1"`
	ProfilePic *string `json:"profilePic,omitempty"`
}

// ProductRequest is shared by create and update. Pointers let "0" be told
// apart from a missing field.
type ProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Ratings     *float64 `json:"ratings" validate:"required,gte=0,lte=5"`
	Image       string   `json:"image" validate:"required"`
}

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity,omitempty"`
}

type UpdateCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type FavoriteResponse struct {
	Message    string `json:"message"`
	IsFavorite bool   `json:"isFavorite"`
}

type SellerView struct {
	ID       uuid.UUID `json:"_id"`
	FullName string    `json:"fullName"`
}

type ProductView struct {
	ID          uuid.UUID   `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Ratings     float64     `json:"ratings"`
	Image       string      `json:"image"`
	SoldBy      *SellerView `json:"soldBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CartLineView keeps the populated-reference shape: productId holds the
// joined product, or null once the product has been deleted. productRef
// always carries the referenced id so the line can still be removed.
type CartLineView struct {
	Product    *ProductView `json:"productId"`
	ProductRef uuid.UUID    `json:"productRef"`
	Quantity   int          `json:"quantity"`
}

type ProductResponse struct {
	Message string      `json:"message"`
	Product ProductView `json:"product"`
}

type CartResponse struct {
	Message string         `json:"message"`
	Cart    []CartLineView `json:"cart"`
}

type CartEntryView struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type UserView struct {
	ID         uuid.UUID       `json:"_id"`
	FullName   string          `json:"fullName"`
	Email      string          `json:"email"`
	ProfilePic string          `json:"profilePic"`
	Cart       []CartEntryView `json:"cart"`
	Favorites  []uuid.UUID     `json:"favorites"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func NewProductView(p *models.Product) ProductView {
	v := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Ratings:     p.Ratings,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.SoldBy != nil {
		v.SoldBy = &SellerView{ID: p.SoldBy.ID, FullName: p.SoldBy.FullName}
	} else if p.SoldByID != uuid.Nil {
		v.SoldBy = &SellerView{ID: p.SoldByID}
	}
	return v
}

func NewProductViews(products []models.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for i := range products {
		out = append(out, NewProductView(&products[i]))
	}
	return out
}

func NewCartView(items []models.CartItem) []CartLineView {
	out := make([]CartLineView, 0, len(items))
	for _, it := range items {
		line := CartLineView{ProductRef: it.ProductID, Quantity: it.Quantity}
		if it.Product != nil && it.Product.ID != uuid.Nil {
			pv := NewProductView(it.Product)
			line.Product = &pv
		}
		out = append(out, line)
	}
	return out
}

func NewUserView(u *models.User, cart []models.CartItem, favorites []uuid.UUID) UserView {
	entries := make([]CartEntryView, 0, len(cart))
	for _, it := range cart {
		entries = append(entries, CartEntryView{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if favorites == nil {
		favorites = []uuid.UUID{}
	}
	return UserView{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		Cart:       entries,
		Favorites:  favorites,
		CreatedAt:  u.CreatedAt,
	}
}
