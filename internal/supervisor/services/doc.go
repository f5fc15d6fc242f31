// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package services adapts rankengine components to suture.Service.

  - HTTPServerService: ListenAndServe plus graceful Shutdown
  - TrainingService: periodic matrix factorization training with a
    minimum-interaction gate
  - JournalGCService: periodic badger value log GC

Each wrapper implements fmt.Stringer so supervisor events name it.
*/
package services
