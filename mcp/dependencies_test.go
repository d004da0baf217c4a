package mcp

import (
	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/internal/config"
)

func NewTestDependencies(reader domain.SolutionReader, svc domain.FilterService, cfg *config.Config) *Dependencies {
	deps := NewDependencies(cfg, "")
	if reader != nil {
		deps.reader = reader
	}
	if svc != nil {
		deps.service = svc
	}
	return deps
}
