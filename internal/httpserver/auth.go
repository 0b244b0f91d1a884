package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/favcart/internal/logging"
	authmw "github.com/Skotchmaster/favcart/internal/middleware/auth"
	"github.com/Skotchmaster/favcart/internal/mykafka"
	"github.com/Skotchmaster/favcart/internal/service"
	"github.com/Skotchmaster/favcart/internal/tokens"
	"github.com/Skotchmaster/favcart/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	Favorites    *service.FavoritesService
	Producer     mykafka.Publisher
	CookieSecure bool
}

func (h *AuthHTTP) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		l.Warn("bind_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	sess, err := h.Svc.SignUp(ctx, req.FullName, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "signup_error", err)
	}
	h.setSession(c, sess.Tokens)

	publish(c, h.Producer, mykafka.TopicUserEvents, sess.User.ID.String(), map[string]any{
		"type":   "user_registered",
		"userID": sess.User.ID,
	})
	l.Info("user_registered", "user_id", sess.User.ID)

	return c.JSON(http.StatusCreated, transport.NewUserView(sess.User, nil, nil))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		l.Warn("bind_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	sess, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "login_error", err)
	}
	h.setSession(c, sess.Tokens)

	prof, err := h.Svc.Profile(ctx, sess.User.ID)
	if err != nil {
		return serviceError(l, "profile_error", err)
	}

	publish(c, h.Producer, mykafka.TopicUserEvents, sess.User.ID.String(), map[string]any{
		"type":   "user_logged_in",
		"userID": sess.User.ID,
	})
	return c.JSON(http.StatusOK, transport.NewUserView(prof.User, prof.Cart, prof.Favorites))
}

// Refresh rotates the session from the refresh cookie.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	ck, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || ck.Value == "" {
		l.Warn("refresh_missing", "status", http.StatusUnauthorized)
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no refresh token")
	}

	pair, err := h.Svc.Refresh(ctx, ck.Value)
	if err != nil {
		h.clearSession(c)
		return serviceError(l, "refresh_error", err)
	}
	h.setSession(c, pair)

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Token refreshed successfully"})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil && ck.Value != "" {
		if err := h.Svc.LogOut(ctx, ck.Value); err != nil {
			l.Error("revoke_error", "error", err)
		}
	}
	h.clearSession(c)

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHTTP) Check(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.check")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	prof, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		return serviceError(l, "profile_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserView(prof.User, prof.Cart, prof.Favorites))
}

func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update_profile")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	var req transport.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		l.Warn("bind_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	prof, err := h.Svc.UpdateProfile(ctx, userID, service.ProfileUpdate{
		FullName:   req.FullName,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		return serviceError(l, "update_profile_error", err)
	}

	publish(c, h.Producer, mykafka.TopicUserEvents, userID.String(), map[string]any{
		"type":   "profile_updated",
		"userID": userID,
	})
	return c.JSON(http.StatusOK, transport.NewUserView(prof.User, prof.Cart, prof.Favorites))
}

// ToggleFavorite serves both /auth/favorite/:productId and
// /products/:id/favorite.
func (h *AuthHTTP) ToggleFavorite(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.toggle_favorite")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	raw := c.Param("productId")
	if raw == "" {
		raw = c.Param("id")
	}
	productID, err := uuid.Parse(raw)
	if err != nil {
		l.Warn("invalid_product_id", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	res, err := h.Favorites.ToggleFavorite(ctx, userID, productID)
	if err != nil {
		return serviceError(l, "toggle_favorite_error", err)
	}

	publish(c, h.Producer, mykafka.TopicUserEvents, userID.String(), map[string]any{
		"type":      "favorite_" + res.String(),
		"userID":    userID,
		"productID": productID,
	})

	msg := "Product added to favorites"
	if !res.IsFavorite() {
		msg = "Product removed from favorites"
	}
	return c.JSON(http.StatusOK, transport.FavoriteResponse{Message: msg, IsFavorite: res.IsFavorite()})
}

func (h *AuthHTTP) setSession(c echo.Context, p *tokens.Pair) {
	for _, ck := range tokens.SessionCookies(p, h.CookieSecure) {
		c.SetCookie(ck)
	}
}

func (h *AuthHTTP) clearSession(c echo.Context) {
	for _, ck := range tokens.ClearSessionCookies(h.CookieSecure) {
		c.SetCookie(ck)
	}
}
