// Copyright 2026 Blink Labs Software
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

package plugin

import (
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Environment carries the runtime dependencies shared by every plugin. These
// can't be expressed as command line options, so they are set once by the
// database layer before plugins are instantiated.
type Environment struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

var (
	environment      Environment
	environmentMutex sync.RWMutex
)

// SetEnvironment replaces the shared plugin environment
func SetEnvironment(env Environment) {
	environmentMutex.Lock()
	defer environmentMutex.Unlock()
	environment = env
}

// CurrentEnvironment returns the shared plugin environment. The logger is
// never nil
func CurrentEnvironment() Environment {
	environmentMutex.RLock()
	env := environment
	environmentMutex.RUnlock()
	if env.Logger == nil {
		env.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return env
}
