// Copyright 2024 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"
	"github.com/jackbister/clf/internal/entries"
	"github.com/jackbister/clf/internal/util"
	"github.com/jackbister/clf/pkg/clf"
)

type Web interface {
	Serve() error
}

type webImpl struct {
	addr      string
	entryRepo entries.Repository

	logger *slog.Logger
}

func NewWeb(addr string, entryRepo entries.Repository, logger *slog.Logger) Web {
	return &webImpl{
		addr:      addr,
		entryRepo: entryRepo,

		logger: logger,
	}
}

func (wi *webImpl) Serve() error {
	return wi.createRouter().Run(wi.addr)
}

func (wi *webImpl) createRouter() *gin.Engine {
	r := gin.New()
	r.Use(util.NewGinSlogger(slog.LevelInfo, wi.logger))
	r.Use(gin.Recovery())

	g := r.Group("api/v1")

	g.GET("entries", func(ctx *gin.Context) {
		startTime, endTime, err := parseTimeParameters(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(400, gin.H{"error": err.Error()})
			return
		}
		host := ctx.Query("host")
		results, err := wi.entryRepo.Filter(startTime, endTime, host)
		if err != nil {
			ctx.AbortWithError(500, fmt.Errorf("failed to filter entries: %w", err))
			return
		}
		ctx.JSON(200, gin.H{"entries": results})
	})

	g.GET("entries/:id", func(ctx *gin.Context) {
		id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
		if err != nil {
			ctx.AbortWithStatusJSON(400, gin.H{"error": "id must be an integer"})
			return
		}
		results, err := wi.entryRepo.GetByIds([]int64{id})
		if err != nil {
			ctx.AbortWithError(500, fmt.Errorf("failed to get entry with id=%v: %w", id, err))
			return
		}
		if len(results) == 0 {
			ctx.AbortWithStatusJSON(404, gin.H{"error": "no entry with id=" + ctx.Param("id")})
			return
		}
		ctx.JSON(200, results[0])
	})

	// Parses a single raw line from the request body and returns the record,
	// without storing anything.
	g.POST("parse", func(ctx *gin.Context) {
		body, err := ctx.GetRawData()
		if err != nil {
			ctx.AbortWithStatusJSON(400, gin.H{"error": "failed to read request body: " + err.Error()})
			return
		}
		line := strings.TrimRight(string(body), "\r\n")
		record, err := clf.Parse(line)
		if err != nil {
			ctx.AbortWithStatusJSON(400, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(200, record)
	})

	return r
}

// parseTimeParameters reads the optional startTime and endTime query
// parameters. Most common timestamp forms are accepted, not just RFC 3339.
func parseTimeParameters(ctx *gin.Context) (*time.Time, *time.Time, error) {
	var startTime *time.Time
	var endTime *time.Time
	if s := ctx.Query("startTime"); s != "" {
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return nil, nil, fmt.Errorf("got error when parsing startTime: %w", err)
		}
		startTime = &t
	}
	if s := ctx.Query("endTime"); s != "" {
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return nil, nil, fmt.Errorf("got error when parsing endTime: %w", err)
		}
		endTime = &t
	}
	return startTime, endTime, nil
}
