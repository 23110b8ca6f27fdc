package server

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/middleware/jwtware"
	"github.com/google/uuid"
)

var errInvalidBody = goerrors.New("Invalid request body", goerrors.CategoryBadInput).
	WithCode(http.StatusBadRequest).
	WithTextCode(auth.TextCodeValidation)

// envelope is the success body shared by every JSON route
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(ctx router.Context, data any) error {
	return ctx.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func created(ctx router.Context, data any, msg ...string) error {
	return ctx.JSON(http.StatusCreated, envelope{
		Success: true,
		Data:    data,
		Message: strings.Join(msg, " "),
	})
}

func message(ctx router.Context, msg string) error {
	return ctx.JSON(http.StatusOK, envelope{Success: true, Message: msg})
}

// bind parses a JSON body. An empty body leaves dst untouched so the
// payload rules report the missing fields.
func bind(ctx router.Context, dst any) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.Bind(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// paramID parses a uuid route param. Malformed ids cannot match a
// record, so they answer with the resource not found error.
func paramID(ctx router.Context, name string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// firstViolation turns a payload failure into a plain 400 carrying the
// first rule message.
func firstViolation(err error) error {
	verr := auth.NewValidationError(err)
	if details := auth.ValidationDetails(verr); len(details) > 0 {
		return goerrors.New(details[0].Message, goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(auth.TextCodeValidation)
	}
	return verr
}

func claimsUserID(ctx router.Context) (uuid.UUID, *auth.AccessClaims, error) {
	claims, found := jwtware.Claims(ctx)
	if !found {
		return uuid.Nil, nil, jwtware.ErrNoToken
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, nil, jwtware.ErrInvalidToken
	}
	return id, claims, nil
}

func tenantID(ctx router.Context) (uuid.UUID, error) {
	id, found := jwtware.CompanyID(ctx)
	if !found {
		return uuid.Nil, jwtware.ErrCompanyUserRequired
	}
	return id, nil
}
