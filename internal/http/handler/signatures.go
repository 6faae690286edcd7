package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"signdesk/internal/http/middleware"
	"signdesk/internal/model"
	"signdesk/internal/service"
)

// Placement units accepted on the wire.
const (
	unitPixels   = "px"
	unitFraction = "fraction"
)

// placeRequest is a signature placement as sent by the signing UI.
// Numeric fields are pointers so that a missing field can be told apart from zero.
type placeRequest struct {
	DocumentID   string   `json:"document_id"`
	X            *float64 `json:"x"`
	Y            *float64 `json:"y"`
	Unit         string   `json:"unit"`
	Page         *int     `json:"page"`
	RenderWidth  *float64 `json:"render_width"`
	RenderHeight *float64 `json:"render_height"`
	Text         string   `json:"text"`
	FontSize     float64  `json:"font_size"`
	FontColor    string   `json:"font_color"`
}

// toInput checks that required fields are present and returns the service input.
// It returns the name of the first missing or malformed field.
func (r placeRequest) toInput() (service.PlaceInput, string) {
	switch {
	case r.X == nil:
		return service.PlaceInput{}, "x"
	case r.Y == nil:
		return service.PlaceInput{}, "y"
	case r.Page == nil:
		return service.PlaceInput{}, "page"
	case r.RenderWidth == nil:
		return service.PlaceInput{}, "render_width"
	case r.RenderHeight == nil:
		return service.PlaceInput{}, "render_height"
	}

	unit := strings.ToLower(strings.TrimSpace(r.Unit))
	if unit != "" && unit != unitPixels && unit != unitFraction {
		return service.PlaceInput{}, "unit"
	}

	return service.PlaceInput{
		DocumentID:   r.DocumentID,
		X:            *r.X,
		Y:            *r.Y,
		Page:         *r.Page,
		RenderWidth:  *r.RenderWidth,
		RenderHeight: *r.RenderHeight,
		Fractional:   unit == unitFraction,
		Text:         r.Text,
		FontSize:     r.FontSize,
		FontColor:    r.FontColor,
	}, ""
}

// bindPlacement parses the body. A non-nil envelope describes why it was rejected.
func bindPlacement(c *fiber.Ctx) (service.PlaceInput, *errorEnvelope) {
	var req placeRequest
	if err := c.BodyParser(&req); err != nil {
		return service.PlaceInput{}, &errorEnvelope{Code: "INVALID_BODY", Message: "invalid request body"}
	}
	in, field := req.toInput()
	if field != "" {
		return service.PlaceInput{}, &errorEnvelope{Code: "INVALID_INPUT", Message: field + " is missing or invalid"}
	}
	return in, nil
}

// PlaceSignature records a Pending signature authored by the caller.
func PlaceSignature(sigSvc service.SignatureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := middleware.ActorFromCtx(c)
		if !ok {
			return unauthorized(c)
		}
		in, bad := bindPlacement(c)
		if bad != nil {
			return writeError(c, fiber.StatusBadRequest, bad.Code, bad.Message)
		}

		sig, err := sigSvc.Place(c.UserContext(), actor, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sig)
	}
}

// ListSignatures lists every signature on one of the caller's documents.
func ListSignatures(sigSvc service.SignatureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := middleware.ActorFromCtx(c)
		if !ok {
			return unauthorized(c)
		}
		id, ok := idParam(c)
		if !ok {
			return invalidID(c)
		}

		sigs, err := sigSvc.ListByDocument(c.UserContext(), actor, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": sigs})
	}
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// UpdateSignatureStatus signs or rejects a Pending signature.
func UpdateSignatureStatus(sigSvc service.SignatureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := middleware.ActorFromCtx(c)
		if !ok {
			return unauthorized(c)
		}
		id, ok := idParam(c)
		if !ok {
			return invalidID(c)
		}

		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		sig, err := sigSvc.UpdateStatus(c.UserContext(), actor, id, model.SignatureStatus(req.Status), req.Reason)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sig)
	}
}

// DeleteSignature removes a signature from one of the caller's documents.
func DeleteSignature(sigSvc service.SignatureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := middleware.ActorFromCtx(c)
		if !ok {
			return unauthorized(c)
		}
		id, ok := idParam(c)
		if !ok {
			return invalidID(c)
		}

		if err := sigSvc.Delete(c.UserContext(), actor, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ViewPublicDocument shows a link holder the document they were invited to sign.
func ViewPublicDocument(linkSvc service.LinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := linkSvc.View(c.UserContext(), c.Params("token"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}

// PlacePublicSignature signs a document through its public link and consumes the link.
func PlacePublicSignature(sigSvc service.SignatureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, bad := bindPlacement(c)
		if bad != nil {
			return writeError(c, fiber.StatusBadRequest, bad.Code, bad.Message)
		}

		signer := model.Actor{SourceIP: c.IP()}
		sig, err := sigSvc.PlacePublic(c.UserContext(), c.Params("token"), signer, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sig)
	}
}
