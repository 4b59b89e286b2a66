package handler

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hisapi/internal/service"
)

// parseID reads the :id path parameter as a positive integer.
func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

// queryInt64 reads a positive integer query parameter.
func queryInt64(c *fiber.Ctx, key string) (int64, bool) {
	n, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func decodeBody(c *fiber.Ctx, v any) error {
	return json.Unmarshal(c.Body(), v)
}

// ListRecords lists records with limit & offset. Every other query parameter is a filter.
func ListRecords[T any](svc service.CRUDService[T], log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		raw := c.Queries()
		delete(raw, "limit")
		delete(raw, "offset")
		filters, err := service.ParseFilters(raw)
		if err != nil {
			return writeServiceError(c, log, err)
		}

		res, err := svc.List(c.UserContext(), service.ListQuery{
			Limit:   limit,
			Offset:  offset,
			Filters: filters,
		})
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// GetRecord returns one record by id.
func GetRecord[T any](svc service.CRUDService[T], log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		item, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(item)
	}
}

// CreateRecord decodes a JSON body and stores it.
func CreateRecord[T any](svc service.CRUDService[T], log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item := new(T)
		if err := decodeBody(c, item); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		created, err := svc.Create(c.UserContext(), item)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// UpdateRecord replaces the editable fields of a record.
func UpdateRecord[T any](svc service.CRUDService[T], log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		item := new(T)
		if err := decodeBody(c, item); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		updated, err := svc.Update(c.UserContext(), id, item)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(updated)
	}
}

// DeleteRecord removes a record by id.
func DeleteRecord[T any](svc service.CRUDService[T], log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// registerCRUD mounts the five record routes on r.
func registerCRUD[T any](r fiber.Router, svc service.CRUDService[T], log *zap.Logger) {
	r.Get("/", ListRecords(svc, log))
	r.Post("/", CreateRecord(svc, log))
	r.Get("/:id", GetRecord(svc, log))
	r.Put("/:id", UpdateRecord(svc, log))
	r.Delete("/:id", DeleteRecord(svc, log))
}
