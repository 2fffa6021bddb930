package main

import (
	"github.com/teamthreads/storefront/order/internal/app"
	"github.com/teamthreads/storefront/order/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
