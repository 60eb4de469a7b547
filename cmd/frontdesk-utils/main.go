// Package main 前台维护工具：迁移、初始化数据、导出报表
package main

import (
	"fmt"
	"os"

	"github.com/dumeirei/hotel-frontdesk/cmd/frontdesk-utils/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
