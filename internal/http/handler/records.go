package handler

import (
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hisapi/internal/service"
)

const dateLayout = "2006-01-02"

type countResponse struct {
	Count int `json:"count"`
}

// MarkMessageRead marks a message as read by its recipient.
func MarkMessageRead(svc service.MessageService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		msg, err := svc.MarkRead(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(msg)
	}
}

// UnreadMessages counts unread messages of ?recipient_id.
func UnreadMessages(svc service.MessageService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipientID, ok := queryInt64(c, "recipient_id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_RECIPIENT_ID", "recipient_id is required")
		}
		n, err := svc.UnreadCount(c.UserContext(), recipientID)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(countResponse{Count: n})
	}
}

// MarkNotificationRead marks one notification as read.
func MarkNotificationRead(svc service.NotificationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		n, err := svc.MarkRead(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(n)
	}
}

// MarkAllNotificationsRead marks every unread notification of ?user_id as read.
func MarkAllNotificationsRead(svc service.NotificationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := queryInt64(c, "user_id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_USER_ID", "user_id is required")
		}
		updated, err := svc.MarkAllRead(c.UserContext(), userID)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(fiber.Map{"updated": updated})
	}
}

// UnreadNotifications counts unread notifications of ?user_id.
func UnreadNotifications(svc service.NotificationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := queryInt64(c, "user_id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_USER_ID", "user_id is required")
		}
		n, err := svc.UnreadCount(c.UserContext(), userID)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(countResponse{Count: n})
	}
}

type complaintStatusRequest struct {
	Status     string `json:"status"`
	Resolution string `json:"resolution"`
}

// ChangeComplaintStatus moves a complaint to the requested status.
func ChangeComplaintStatus(svc service.ComplaintService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		var req complaintStatusRequest
		if err := decodeBody(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Status == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "status is required")
		}
		complaint, err := svc.ChangeStatus(c.UserContext(), id, req.Status, req.Resolution)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(complaint)
	}
}

// ActiveConventions lists the conventions of ?hospital_id in force on ?date (default today).
func ActiveConventions(svc service.InsuranceConventionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hospitalID, ok := queryInt64(c, "hospital_id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_HOSPITAL_ID", "hospital_id is required")
		}
		day := time.Now().UTC()
		if raw := c.Query("date"); raw != "" {
			d, err := time.Parse(dateLayout, raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
			}
			day = d
		}
		items, err := svc.ActiveOn(c.UserContext(), hospitalID, day)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(fiber.Map{"data": items, "total": len(items)})
	}
}

// ToggleInterventionType flips is_active.
func ToggleInterventionType(svc service.InterventionTypeService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		it, err := svc.Toggle(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(it)
	}
}

// ExportDownloadURL returns a presigned URL for a completed export.
func ExportDownloadURL(svc service.ExportService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		url, expiry, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(fiber.Map{"url": url, "expires_in": int64(expiry.Seconds())})
	}
}

// ExportFile streams the file of a completed export through the API.
func ExportFile(svc service.ExportService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		body, info, err := svc.Open(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", path.Base(info.Key)))
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		// fasthttp closes body once the response is written.
		return c.SendStream(body, size)
	}
}

// RetryIntegrationRecord re-publishes a failed or pending record.
func RetryIntegrationRecord(svc service.IntegrationRecordService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		rec, err := svc.Retry(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(rec)
	}
}

// AcknowledgeIntegrationRecord confirms delivery of a sent record.
func AcknowledgeIntegrationRecord(svc service.IntegrationRecordService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		rec, err := svc.Acknowledge(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(rec)
	}
}

// RunCustomReport renders a report and returns the workbook as an attachment.
func RunCustomReport(svc service.CustomReportService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		file, err := svc.Run(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		c.Set(fiber.HeaderContentType, file.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
		c.Set("X-Row-Count", strconv.Itoa(file.Rows))
		return c.Send(file.Data)
	}
}
