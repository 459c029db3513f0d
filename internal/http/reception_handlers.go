package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medidesk/internal/domain"
	"medidesk/internal/repository"
)

type arrivalReq struct {
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Reason      string `json:"reason"`
	Priority    string `json:"priority" example:"medium"`
	Notes       string `json:"notes"`
}

// @Summary Register patient arrival
// @Tags reception
// @Accept json
// @Produce json
// @Param input body arrivalReq true "Arrival"
// @Success 201 {object} domain.ReceptionEntry
// @Failure 400 {object} map[string]string
// @Router /reception [post]
func (s *Server) registerArrival(c *gin.Context) {
	var req arrivalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := s.reception.RegisterArrival(c, domain.ArrivalInput{
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Reason:      req.Reason,
		Priority:    req.Priority,
		Notes:       req.Notes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// @Summary Reception queue
// @Description Waiting patients first by priority then arrival, other entries in arrival order
// @Tags reception
// @Produce json
// @Param q query string false "Patient name or reason contains"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, max 100"
// @Success 200 {object} repository.Paginated[domain.ReceptionEntry]
// @Failure 400 {object} map[string]string
// @Router /reception [get]
func (s *Server) listReception(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	list, err := s.reception.ListPage(c, repository.ReceptionFilter{Query: c.Query("q")}, page)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Waiting patients
// @Tags reception
// @Produce json
// @Success 200 {array} domain.ReceptionEntry
// @Router /reception/waiting [get]
func (s *Server) listWaiting(c *gin.Context) {
	list, err := s.reception.Waiting(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Today's reception counters
// @Tags reception
// @Produce json
// @Success 200 {object} domain.ReceptionStats
// @Router /reception/stats/today [get]
func (s *Server) todayStats(c *gin.Context) {
	stats, err := s.reception.TodayStats(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Get reception entry
// @Tags reception
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.ReceptionEntry
// @Failure 404 {object} map[string]string
// @Router /reception/{id} [get]
func (s *Server) getReception(c *gin.Context) {
	e, err := s.reception.Get(c, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

type detailsReq struct {
	Reason   string  `json:"reason"`
	Priority string  `json:"priority"`
	Notes    *string `json:"notes"`
}

// @Summary Update reason, priority or notes of a waiting entry
// @Tags reception
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param input body detailsReq true "Details"
// @Success 200 {object} domain.ReceptionEntry
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reception/{id} [put]
func (s *Server) updateReception(c *gin.Context) {
	var req detailsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := s.reception.UpdateDetails(c, c.Param("id"), domain.DetailsInput{
		Reason:   req.Reason,
		Priority: req.Priority,
		Notes:    req.Notes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// assignReq пустой doctor проверяет домен после проверки статуса
type assignReq struct {
	Doctor string `json:"doctor"`
}

// @Summary Assign doctor
// @Tags reception
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param input body assignReq true "Doctor"
// @Success 200 {object} domain.ReceptionEntry
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reception/{id}/assign [patch]
func (s *Server) assignDoctor(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := s.reception.AssignDoctor(c, c.Param("id"), req.Doctor)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

type receptionStatusReq struct {
	Status string `json:"status" binding:"required" example:"in_consultation"`
	Doctor string `json:"doctor"`
}

// @Summary Move entry to a new status
// @Description in_consultation needs doctor; same rules as assign, complete and cancel
// @Tags reception
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param input body receptionStatusReq true "New status"
// @Success 200 {object} domain.ReceptionEntry
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reception/{id}/status [patch]
func (s *Server) updateReceptionStatus(c *gin.Context) {
	var req receptionStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	to, err := domain.ParseReceptionStatus(req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	e, err := s.reception.UpdateStatus(c, c.Param("id"), to, req.Doctor)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary Complete consultation
// @Tags reception
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.ReceptionEntry
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reception/{id}/complete [patch]
func (s *Server) completeReception(c *gin.Context) {
	e, err := s.reception.Complete(c, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary Cancel reception entry
// @Tags reception
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.ReceptionEntry
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reception/{id} [delete]
func (s *Server) cancelReception(c *gin.Context) {
	e, err := s.reception.Cancel(c, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
