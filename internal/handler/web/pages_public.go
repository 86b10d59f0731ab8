package web

import (
	"errors"
	"log/slog"
	"net/http"

	"dispatch/internal/domain/entity"
	authservice "dispatch/internal/service/auth"
	userUC "dispatch/internal/usecase/user"
)

func (a *App) landing(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != nil {
		redirect(w, r, "/dashboard")
		return
	}
	a.render(w, r, http.StatusOK, "landing.html", view{Title: "Welcome"})
}

func (a *App) accessDenied(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusForbidden, "access_denied.html", view{Title: "Access denied"})
}

/* ───────────────────────────── registration ───────────────────────────── */

func (a *App) registerForm(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != nil {
		redirect(w, r, "/dashboard")
		return
	}
	f := newForm(nil)
	f.Values.Set("role", string(entity.RoleReader))
	a.render(w, r, http.StatusOK, "register.html", view{Title: "Register", Form: f})
}

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f := newForm(r.PostForm)
	ctx := r.Context()
	u, err := a.Users.Register(ctx, userUC.RegisterInput{
		Username:        f.Get("username"),
		Email:           f.Get("email"),
		FirstName:       f.Get("first_name"),
		LastName:        f.Get("last_name"),
		Role:            f.Get("role"),
		Password:        r.PostForm.Get("password"),
		PasswordConfirm: r.PostForm.Get("password_confirm"),
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrConflict):
			f.Errors["username"] = "A user with that username or email already exists."
		case errors.Is(err, entity.ErrInvalidInput):
			f.Fail(err)
		default:
			a.serverError(w, r, err)
			return
		}
		f.Values.Del("password")
		f.Values.Del("password_confirm")
		a.render(w, r, http.StatusBadRequest, "register.html", view{Title: "Register", Form: f})
		return
	}
	if err := a.login(ctx, u.ID); err != nil {
		a.serverError(w, r, err)
		return
	}
	a.flash(ctx, "success", "Welcome "+u.Username+"! Your account has been created successfully.")
	redirect(w, r, "/dashboard")
}

/* ───────────────────────────── login / logout ───────────────────────────── */

func (a *App) loginForm(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != nil {
		redirect(w, r, "/dashboard")
		return
	}
	f := newForm(nil)
	f.Values.Set("next", r.URL.Query().Get("next"))
	a.render(w, r, http.StatusOK, "login.html", view{Title: "Log in", Form: f})
}

func (a *App) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	f := newForm(r.PostForm)
	u, err := a.Auth.Authenticate(ctx, authservice.Credentials{
		Username: f.Get("username"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		if !errors.Is(err, entity.ErrUnauthorized) {
			a.serverError(w, r, err)
			return
		}
		a.logger.Info("web login failed", slog.String("username", f.Get("username")))
		f.Values.Del("password")
		f.Errors["form"] = "Please enter a correct username and password."
		a.render(w, r, http.StatusUnauthorized, "login.html", view{Title: "Log in", Form: f})
		return
	}
	if err := a.login(ctx, u.ID); err != nil {
		a.serverError(w, r, err)
		return
	}
	redirect(w, r, safeNext(f.Get("next")))
}

func (a *App) logoutSubmit(w http.ResponseWriter, r *http.Request) {
	if err := a.logout(r.Context()); err != nil {
		a.serverError(w, r, err)
		return
	}
	a.flash(r.Context(), "info", "You have been logged out.")
	redirect(w, r, "/")
}
