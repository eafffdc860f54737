package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rizkypratama/authguard/config"
	"github.com/rizkypratama/authguard/pkg/helpers"
	"github.com/rizkypratama/authguard/pkg/mailer"
	tpl "github.com/rizkypratama/authguard/pkg/mailer/templates"
	"github.com/rizkypratama/authguard/pkg/response"
	"github.com/rizkypratama/authguard/pkg/validation"
)

type EmailHandler struct {
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewEmailHandler(pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *EmailHandler {
	return &EmailHandler{Pub: pub, Logger: logger, Cfg: cfg}
}

type sendEmailRequest struct {
	To       string         `json:"to" binding:"required,email"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
	Subject  string         `json:"subject"` // required if no template
	Text     string         `json:"text"`    // optional if html provided
	HTML     string         `json:"html"`    // optional if text provided
}

// Send enqueues an email job to RabbitMQ. Admin only.
func (h *EmailHandler) Send(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if req.Template == "" {
		if req.Subject == "" || (req.Text == "" && req.HTML == "") {
			response.Error[any](c, http.StatusBadRequest, "either template or subject with text/html is required", nil)
			return
		}
	} else if !tpl.Known(req.Template) {
		response.Error[any](c, http.StatusBadRequest, "unknown template", nil)
		return
	}

	if h.Cfg != nil && !h.Cfg.MailSendEnabled {
		response.Success[any](c, http.StatusAccepted, gin.H{"enqueued": false, "disabled": true}, "email sending disabled", nil)
		return
	}
	if h.Pub == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "email queue unavailable", nil)
		return
	}

	job := mailer.EmailJob{To: req.To}
	if req.Template != "" {
		job.Template = req.Template
		job.Data = req.Data
	} else {
		job.Subject = req.Subject
		job.Text = req.Text
		job.HTML = req.HTML
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("failed to publish email job")
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to enqueue", nil)
		return
	}
	response.Success[any](c, http.StatusAccepted, gin.H{"enqueued": true}, "email enqueued", nil)
}
