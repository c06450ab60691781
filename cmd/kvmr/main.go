package main

import (
	"flag"
	"fmt"
	"os"

	"kvmr/config"
	db "kvmr/debug"
	"kvmr/driver"
	"kvmr/mr"
	"kvmr/pipelines"
)

var cfgpn string
var answers string

func init() {
	flag.StringVar(&cfgpn, "config", "", "yaml config file")
	flag.StringVar(&answers, "answers", "", "answer log (default from config)")
}

func main() {
	flag.Parse()
	db.SetName("kvmr")
	defer db.Sync()

	cfg, err := config.ReadConfig(cfgpn)
	if err != nil {
		db.DFatalf("ReadConfig %v err %v", cfgpn, err)
	}
	if answers != "" {
		cfg.Output.ANSWERS = answers
	}
	ctx, err := mr.NewContext(cfg.Name, &cfg.Engine)
	if err != nil {
		db.DFatalf("NewContext err %v", err)
	}
	defer ctx.Close()
	db.DPrintf(db.DRIVER, "context %v", ctx)

	p := pipelines.NewPart1(ctx, cfg)
	d := driver.NewDriver(driver.NewAnswerLog(cfg.Output.ANSWERS), os.Stdout)
	if err := d.LogAnswer("PART 1", func() (interface{}, error) {
		return d.Run(p.Battery())
	}); err != nil {
		db.DFatalf("PART 1 err %v", err)
	}
	if s, err := d.Results().Summary(); err == nil {
		fmt.Println(s)
	}
}
