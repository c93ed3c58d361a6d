package handler

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/usecase"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/logger"
	"github.com/Elmalamb/vdm/pkg/response"
	"github.com/Elmalamb/vdm/pkg/utils"
)

type AdHandler struct {
	adUseCase *usecase.AdUseCase
}

func NewAdHandler(adUseCase *usecase.AdUseCase) *AdHandler {
	return &AdHandler{
		adUseCase: adUseCase,
	}
}

type updateAdRequest struct {
	Title      string `json:"title" validate:"required,min=5"`
	PostalCode string `json:"postal_code" validate:"required,postalcode"`
}

// ListAds is the public home listing, optionally narrowed to one postal code.
func (h *AdHandler) ListAds(c echo.Context) error {
	ads, err := h.adUseCase.ListApproved(c.Request().Context(), c.QueryParam("postal_code"))
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	start, end := utils.Window(len(ads), params.PageSize, params.Offset)
	return response.Paginated(c, ads[start:end], int64(len(ads)), params.Page, params.PageSize)
}

func (h *AdHandler) GetAd(c echo.Context) error {
	view, err := h.adUseCase.GetAd(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

func (h *AdHandler) ListMyAds(c echo.Context) error {
	ads, err := h.adUseCase.ListMine(c.Request().Context(), middleware.SessionFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ads)
}

// SubmitAd takes a multipart form with the fields title, price and
// postal_code and the files image and video.
func (h *AdHandler) SubmitAd(c echo.Context) error {
	price, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("price")), 64)
	if err != nil {
		return response.Error(c, errors.Validation("price must be a number"))
	}

	image, closeImage, err := formUpload(c, "image")
	if err != nil {
		return response.Error(c, err)
	}
	defer closeImage()

	video, closeVideo, err := formUpload(c, "video")
	if err != nil {
		return response.Error(c, err)
	}
	defer closeVideo()

	ad, err := h.adUseCase.Submit(c.Request().Context(), middleware.SessionFrom(c), usecase.SubmitAdInput{
		Title:      c.FormValue("title"),
		Price:      price,
		PostalCode: c.FormValue("postal_code"),
		Image:      image,
		Video:      video,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, ad)
}

func (h *AdHandler) UpdateAd(c echo.Context) error {
	var req updateAdRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ad, err := h.adUseCase.UpdateAd(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), usecase.UpdateAdInput{
		Title:      req.Title,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ad)
}

// formUpload opens the multipart file field. A missing field yields a nil
// upload so the use case reports it with the other validation errors.
func formUpload(c echo.Context, field string) (*usecase.MediaUpload, func(), error) {
	noop := func() {}

	header, err := c.FormFile(field)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, errors.BadRequest("Invalid multipart form", err)
	}

	file, err := header.Open()
	if err != nil {
		logger.Error("Error opening uploaded %s: %v", field, err)
		return nil, noop, errors.BadRequest("Unable to read uploaded file", err)
	}

	return &usecase.MediaUpload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, func() { file.Close() }, nil
}
