// Command fuelgo はFuelGo APIのエントリーポイント。
//
//	fuelgo [serve]          APIサーバーを起動する
//	fuelgo migrate          マイグレーションを適用する
//	fuelgo seed <companyID> デモ用の取引を投入する
//	fuelgo healthcheck      /health を確認する（Dockerヘルスチェック用）
package main

import (
	"fmt"
	"os"

	"github.com/Fuelgo-app/fuelgo-api/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fuelgo: %v\n", err)
		os.Exit(1)
	}
}
