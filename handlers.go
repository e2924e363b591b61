package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/cityreport_bot/config"
	"github.com/mmdatafocus/cityreport_bot/middlewares"
	"github.com/mmdatafocus/cityreport_bot/models"
	"github.com/sirupsen/logrus"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		token, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrorInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func listReportsHandler() gin.HandlerFunc {
	store := models.NewReportStore()
	return func(c *gin.Context) {
		if ownerRaw := c.Query("owner_id"); ownerRaw != "" {
			ownerID, err := strconv.ParseInt(ownerRaw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner_id"})
				return
			}
			limit := 50
			if limitRaw := c.Query("limit"); limitRaw != "" {
				n, err := strconv.Atoi(limitRaw)
				if err != nil || n <= 0 {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
					return
				}
				limit = n
			}
			rows, err := store.ListByOwner(c.Request.Context(), ownerID, limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"data": rows})
			return
		}

		rows, err := store.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

func exportReportsHandler() gin.HandlerFunc {
	store := models.NewReportStore()
	return func(c *gin.Context) {
		logger := config.GetLogger()

		rows, err := store.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		f, err := buildReportWorkbook(rows)
		if err != nil {
			config.LogError(logger, "server.go", "exportReportsHandler", "build-workbook", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}

		fields := logrus.Fields{"rows": len(rows)}
		if claim := middlewares.CtxValue(c.Request.Context()); claim != nil {
			fields["username"] = claim.Username
		}
		logger.WithFields(fields).Info("[reports.export]")

		filename := fmt.Sprintf("reports_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := f.Write(c.Writer); err != nil {
			config.LogError(logger, "server.go", "exportReportsHandler", "write-workbook", nil, err)
		}
	}
}
