// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package supervisor runs rankengine's long-lived services under suture v4.

# Tree

	RootSupervisor ("rankengine")
	├── "storage-layer"
	│   └── JournalGCService (persistent journals only)
	├── "model-layer"
	│   └── TrainingService
	└── "api-layer"
	    └── HTTPServerService

Each layer counts failures on its own. A service that returns an error or
panics is restarted with suture's backoff; a service that returns
suture.ErrDoNotRestart is removed.

# Logging

Supervisor events go through sutureslog. main passes
logging.NewSlogLogger("supervisor") so they share the zerolog stream:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddModelService(services.NewTrainingService(engine, trainingCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.HTTP.ShutdownTimeout, logger))
	err = tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor
