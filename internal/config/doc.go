// Package config loads the filters host configuration.
//
// Configuration lives in config/<env>.yaml, where env comes from the ENV
// variable (default "local"). ${VAR} and ${VAR:-default} are expanded from
// the environment before parsing.
//
//	http:
//	  port: ${PORT:-8080}
//	host:
//	  idle_timeout_sec: 1800
//	  allowed_origins: ["https://shop.example.com"]
//	s3:
//	  region: eu-west-1
//	widgets:
//	  - name: products
//	    title: Products
//	    schema: schemas/products.yaml
//	    class: products
//	    apply: "true"
//	  - name: students
//	    schema: s3://filters/students.json
//	    mode: fetch
//
// # Usage
//
//	cfg, err := config.Load(config.GetEnv())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
