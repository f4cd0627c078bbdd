// Copyright 2025 Zintix Labs
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

package server_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/server"
	"github.com/zintix-labs/seedlab/server/logger"
	"github.com/zintix-labs/seedlab/server/netsvr"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

func testCfg() *svrcfg.SvrCfg {
	return &svrcfg.SvrCfg{Log: logger.NewDefaultLogger(logger.ModeSilence), Workers: 2}
}

func TestNewLabWithoutCheckpoint(t *testing.T) {
	c := testCfg()
	require.NoError(t, c.Valid())
	lab, closeFn, err := server.NewLab(c)
	require.NoError(t, err)
	assert.Nil(t, closeFn)
	assert.Equal(t, 2, lab.Workers())
	assert.NotNil(t, lab.Metrics())
}

func TestNewLabWithCheckpoint(t *testing.T) {
	c := testCfg()
	c.Checkpoint = t.TempDir()
	require.NoError(t, c.Valid())
	lab, closeFn, err := server.NewLab(c)
	require.NoError(t, err)
	require.NotNil(t, lab)
	require.NotNil(t, closeFn)
	require.NoError(t, closeFn())
}

func TestRunWithSvrRejects(t *testing.T) {
	for _, svr := range []netsvr.NetSvr{nil, &netsvr.ChiAdapter{}} {
		e, ok := errs.AsErr(server.RunWithSvr(testCfg(), svr))
		require.True(t, ok)
		assert.Equal(t, errs.Fatal, e.ErrLv)
	}

	bad := testCfg()
	bad.Workers = -1
	err := server.RunWithSvr(bad, netsvr.NewChiServerDefault())
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
}
