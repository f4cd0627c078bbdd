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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/checkpoint"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/metrics"
	"github.com/zintix-labs/seedlab/server/api"
	"github.com/zintix-labs/seedlab/server/app"
	"github.com/zintix-labs/seedlab/server/netsvr"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口。
//
// 它負責：
//  1. 驗證 SvrCfg 並補上預設值。
//  2. 依設定建立 checkpoint store、metrics 與 seedlab.Lab。
//  3. 建立 HTTP server 並註冊路由與 middleware。
//  4. 啟動 app.Run()；checkpoint store 以 app.Closer 隨 server 一起關閉。
//
// Run 不讀檔案或環境變數；所有設定都由 SvrCfg 注入。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 外層傳入的 logger 可能不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr, netsvr.DefaultTimeouts))
}

// RunWithSvr 與 Run 相同，但允許注入自訂的 NetSvr（自己的 listener、timeout 或路由框架）。
//
// svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	lab, closeFn, err := NewLab(sCfg)
	if err != nil {
		sCfg.Log.Error("build lab failed", slog.Any("err", err))
		return err
	}
	store := app.NewCloser("checkpoint", closeFn)
	// app 正常結束時已關閉，這裡處理註冊路由失敗的情況
	defer store.Shutdown(context.Background())

	if err := api.RegisterRoutes(svr, sCfg, lab); err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}

	a := app.NewWith(sCfg.Log, svr, store)
	if s, ok := svr.(*netsvr.ChiAdapter); ok {
		sCfg.Log.Info("[seedlab] listening on http://localhost" + s.Address())
	} else {
		sCfg.Log.Info("[seedlab] listening")
	}
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}

// NewLab 依設定組裝 Lab；回傳的 close 負責關閉 checkpoint store（未設定時為 nil）。
func NewLab(sCfg *svrcfg.SvrCfg) (*seedlab.Lab, func() error, error) {
	opts := []seedlab.Option{
		seedlab.WithLogger(sCfg.Log),
		seedlab.WithWorkers(sCfg.Workers),
		seedlab.WithPoolSize(sCfg.PoolSize),
		seedlab.WithMetrics(metrics.New()),
	}
	var closeFn func() error
	if sCfg.Checkpoint != "" {
		store, err := checkpoint.Open(sCfg.Checkpoint, sCfg.Log)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, seedlab.WithCheckpoint(store))
		closeFn = store.Close
	}
	return seedlab.New(opts...), closeFn, nil
}
