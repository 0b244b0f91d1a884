package client

import (
	"context"
	"slices"
	"time"
)

type CartEntry struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type User struct {
	ID         string      `json:"_id"`
	FullName   string      `json:"fullName"`
	Email      string      `json:"email"`
	ProfilePic string      `json:"profilePic"`
	Cart       []CartEntry `json:"cart"`
	Favorites  []string    `json:"favorites"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Cart = slices.Clone(u.Cart)
	c.Favorites = slices.Clone(u.Favorites)
	return &c
}

func (u *User) IsFavorite(productID string) bool {
	return u != nil && slices.Contains(u.Favorites, productID)
}

type Seller struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
}

type Product struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Ratings     float64   `json:"ratings"`
	Image       string    `json:"image"`
	SoldBy      *Seller   `json:"soldBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CartLine mirrors the server shape: Product is nil when the product has
// been deleted since it was added, Ref still names it.
type CartLine struct {
	Product  *Product `json:"productId"`
	Ref      string   `json:"productRef"`
	Quantity int      `json:"quantity"`
}

func (l CartLine) ProductID() string {
	if l.Ref != "" {
		return l.Ref
	}
	if l.Product == nil {
		return ""
	}
	return l.Product.ID
}

type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Ratings     float64 `json:"ratings"`
	Image       string  `json:"image"`
}

type ProfileUpdate struct {
	FullName   *string `json:"fullName,omitempty"`
	ProfilePic *string `json:"profilePic,omitempty"`
}

// API is the server surface the Store reconciles against.
type API interface {
	CheckAuth(ctx context.Context) (*User, error)
	SignUp(ctx context.Context, in SignupInput) (*User, error)
	LogIn(ctx context.Context, email, password string) (*User, error)
	LogOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, in ProfileUpdate) (*User, error)
	ToggleFavorite(ctx context.Context, productID string) (bool, error)

	ListProducts(ctx context.Context) ([]Product, error)
	AddProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error

	GetCart(ctx context.Context) ([]CartLine, error)
	AddToCart(ctx context.Context, productID string, quantity int) ([]CartLine, error)
	RemoveFromCart(ctx context.Context, productID string) ([]CartLine, error)
	UpdateCartQuantity(ctx context.Context, productID string, quantity int) error
}
