package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/state/autohide"
)

type setLoadingRequest struct {
	Loading bool   `json:"loading"`
	Message string `json:"message"`
}

type navigationRequest struct {
	Path string `json:"path" binding:"required"`
}

// navbarEvent is one browser event. Type is scroll, hover or expand; Y goes
// with scroll and On with the other two.
type navbarEvent struct {
	Type string  `json:"type" binding:"required"`
	Y    float64 `json:"y"`
	On   bool    `json:"on"`
}

type navbarView struct {
	State  autohide.State  `json:"state"`
	Config autohide.Config `json:"config"`
}

func loadingStateHandler(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).Loading.State())
}

func setLoadingHandler(c *gin.Context) {
	var req setLoadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	l := sessionFrom(c).Loading
	l.SetLoading(req.Loading, req.Message)
	c.JSON(http.StatusOK, l.State())
}

func navigationHandler(c *gin.Context) {
	var req navigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "path required")
		return
	}
	l := sessionFrom(c).Loading
	l.RouteChanged(req.Path)
	c.JSON(http.StatusOK, l.State())
}

func navbarStateHandler(c *gin.Context) {
	ui := sessionFrom(c).UI
	c.JSON(http.StatusOK, navbarView{State: ui.State(), Config: ui.Config()})
}

func navbarEventHandler(c *gin.Context) {
	var req navbarEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	var ev autohide.Event
	switch strings.ToLower(req.Type) {
	case "scroll":
		ev = autohide.Scrolled{Y: req.Y}
	case "hover":
		ev = autohide.HoverChanged{Hovering: req.On}
	case "expand":
		ev = autohide.ExpandedChanged{Expanded: req.On}
	default:
		writeError(c, http.StatusBadRequest, "unknown event type")
		return
	}
	ui := sessionFrom(c).UI
	c.JSON(http.StatusOK, navbarView{State: ui.Handle(ev), Config: ui.Config()})
}
