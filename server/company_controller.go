package server

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
)

const logoField = "logo"

// CompanyController lets tenant users manage their own company profile
type CompanyController struct {
	service *auth.CompanyProfileService
}

func (a *CompanyController) Profile(ctx router.Context) error {
	id, err := tenantID(ctx)
	if err != nil {
		return err
	}

	profile, err := a.service.Get(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ok(ctx, profile)
}

func (a *CompanyController) UpdateProfile(ctx router.Context) error {
	id, err := tenantID(ctx)
	if err != nil {
		return err
	}

	var req auth.CompanyProfileUpdate
	if err := bind(ctx, &req); err != nil {
		return err
	}

	profile, err := a.service.Update(ctx.Context(), id, req)
	if err != nil {
		return err
	}

	return ok(ctx, profile)
}

func (a *CompanyController) UploadLogo(ctx router.Context) error {
	id, err := tenantID(ctx)
	if err != nil {
		return err
	}

	header, err := formFile(ctx, logoField)
	if err != nil {
		return auth.ErrNoFileProvided
	}
	if header.Size > auth.MaxLogoSize {
		return auth.ErrLogoTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return auth.ErrNoFileProvided
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, auth.MaxLogoSize+1))
	if err != nil {
		return err
	}

	url, err := a.service.UploadLogo(
		ctx.Context(),
		id,
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		return err
	}

	return ok(ctx, map[string]any{"logoUrl": url})
}

// formFile reads one uploaded file from a multipart body
func formFile(ctx router.Context, key string) (*multipart.FileHeader, error) {
	mediaType, params, err := mime.ParseMediaType(ctx.Header("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return nil, auth.ErrNoFileProvided
	}

	form, err := multipart.NewReader(bytes.NewReader(ctx.Body()), params["boundary"]).
		ReadForm(auth.MaxLogoSize + 1<<20)
	if err != nil {
		return nil, auth.ErrNoFileProvided
	}

	files := form.File[key]
	if len(files) == 0 {
		return nil, auth.ErrNoFileProvided
	}
	return files[0], nil
}
