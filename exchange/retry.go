// Copyright 2025 Poiesic Systems
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


package exchange

import (
	"context"
	"time"
)

// retry runs read until it succeeds, the attempts are used up or ctx is
// done. The delay doubles after each failed attempt. The last error is
// returned.
func (s settings) retry(ctx context.Context, what string, read func() error) error {
	if s.retryAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	delay := s.retryDelay
	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = read(); err == nil {
			if attempt > 1 {
				s.logger.Debug("read succeeded after retry", "what", what, "attempt", attempt)
			}
			return nil
		}
		if attempt == s.retryAttempts {
			return err
		}

		s.logger.Debug("read failed, retrying", "what", what, "attempt", attempt, "delay", delay, "error", err)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
