// Mgmt
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package lib

import (
	"net/http"

	"github.com/purpleidea/shadergraph/util"

	"github.com/gin-gonic/gin"
)

func init() {
	// XXX: here for now: https://github.com/gin-gonic/gin/issues/1180
	gin.SetMode(gin.ReleaseMode) // for production
}

// ginLogger is a helper to get structured logs out of gin.
func (obj *Main) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		method := c.Request.Method
		path := c.Request.URL.Path
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		if !obj.Debug {
			return
		}
		obj.httpLogf("%v %s %s (%d)", clientIP, method, path, status)
	}
}

// Router returns the handler of the preview server.
func (obj *Main) Router() http.Handler {
	router := gin.New()
	router.Use(obj.ginLogger(), gin.RecoveryWithWriter(&util.LogWriter{
		Prefix: "http: ",
		Logf:   obj.Logf,
	}))

	router.GET("/shader", func(c *gin.Context) {
		source := obj.state.Source()
		if source == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no shader compiled yet"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(source))
	})

	router.GET("/status", func(c *gin.Context) {
		status := obj.state.Status()
		if status == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no compile yet"})
			return
		}
		h := gin.H{}
		h["program"] = obj.Program
		h["version"] = obj.Version
		h["input"] = obj.Input
		h["status"] = status
		c.JSON(http.StatusOK, h)
	})

	router.GET("/debug", func(c *gin.Context) {
		events := []gin.H{}
		for _, event := range obj.state.Events() {
			events = append(events, gin.H{
				"pass":   event.Pass,
				"node":   event.Node,
				"source": event.Source,
			})
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	})

	router.GET("/metrics", gin.WrapH(obj.prom.Handler()))

	return router
}
