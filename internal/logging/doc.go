// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package logging provides the process-wide zerolog logger for rankengine.

Init is called once from main with the logging section of the loaded
configuration. Components take a child logger tagged with their name:

	log := logging.WithComponent("api")
	log.Info().Str("addr", addr).Msg("listening")

HTTP handlers log through Ctx, which attaches the request ID placed in the
context by the API middleware:

	logging.Ctx(r.Context()).Warn().Err(err).Msg("recommend failed")

Libraries that expect log/slog (sutureslog in the supervisor tree) get a
slog.Logger from NewSlogLogger that forwards to zerolog.

Always terminate event chains with Msg or Send; an unterminated event is
never written.
*/
package logging
