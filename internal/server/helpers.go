package server

import (
	"errors"
	"strconv"

	"mingle/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was
// already committed by a helper. Handlers must return nil (not this
// error) to avoid Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/skip query parameters.
type Pagination struct {
	Limit int
	Skip  int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and skip query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}

	return Pagination{Limit: limit, Skip: skip}
}

// parseHistoryLimit reads the limit query for history endpoints. Unlike
// parsePagination, an explicit value is passed through as-is (zero
// included, which the service answers with an empty page); only an
// absent or malformed value selects def.
func parseHistoryLimit(c *fiber.Ctx, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten;
// callers should check: if err != nil { return nil }.
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = respondError(c, models.NewValidationError("Invalid post ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// identityFromLocals rebuilds the authenticated identity stored by the
// auth middleware.
func identityFromLocals(c *fiber.Ctx) models.Identity {
	id, _ := c.Locals("userID").(uint)
	name, _ := c.Locals("userName").(string)
	return models.Identity{UserID: id, Name: name}
}

// statusForCode maps engine error codes onto HTTP statuses. Every
// precondition failure has a distinct code, so the mapping never has to
// re-derive the reason from message text.
func statusForCode(code string) int {
	switch code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeInvalidExpiration:
		return fiber.StatusUnprocessableEntity
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeExpired, models.CodeSelfVote:
		return fiber.StatusForbidden
	case models.CodeDuplicateVote, models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes a standardized error response for an engine error.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}

	response := models.ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
	}
	if appErr.Err != nil {
		response.Details = appErr.Err.Error()
	}
	return c.Status(statusForCode(appErr.Code)).JSON(response)
}

// respondValidation turns validator.Struct failures into a 400 with the
// first offending field named.
func respondValidation(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return respondError(c, models.NewValidationError(
			"Invalid field "+fe.Field()+": failed "+fe.Tag()+" constraint"))
	}
	return respondError(c, models.NewValidationError("Invalid request body"))
}
