// Package bwboot is the startup composition root for the chat Lambda function.
//
// # Overview
//
// [Configure] runs once per process and builds a [Container] holding everything the
// request handlers share:
//
//	c, err := bwboot.Configure(ctx, bwboot.Options{BuildMode: bwboot.BuildRelease})
//	if err != nil {
//	    // startup failed; nothing was recovered
//	}
//	c.Logger.Ctx(ctx).Info("hello")
//	c.KeyValueStore.GetItem(ctx, ...)
//	c.EventBus.PutEvents(ctx, ...)
//
// # Configuration
//
// [BuildConfiguration] reads an optional appsettings.json from the working directory and
// overlays every environment variable. Environment values win. Keys are case-insensitive
// and ":", "__" and "." separate sections:
//
//	{"Logging": {"Level": "Debug"}}   ->  cfg.Get("logging:level") == "Debug"
//	LOGGING__LEVEL=Information        ->  cfg.Get("logging:level") == "Information"
//
// The composition root itself reads these variables:
//
//	| Variable          | Required | Default | Description                              |
//	|-------------------|----------|---------|------------------------------------------|
//	| AWS_REGION        | Yes      | -       | Region for both AWS clients              |
//	| SERVICE_NAME      | No       | bwchat  | service.name of exported traces          |
//	| OTEL_EXPORTER     | No       | xrayudp | Trace exporter: "xrayudp" or "stdout"    |
//	| OTEL_SDK_DISABLED | No       | false   | Never record spans                       |
//
// # Logging
//
// [Logger.Ctx] returns a zap logger that writes single-line JSON and adds the Lambda
// request ID, function ARN and trace IDs of the current invocation, plus any fields
// pushed with [WithLogFields]. Fields set by the caller always win over enrichment.
//
// # Tracing
//
// All AWS SDK calls are instrumented through [Tracing]. Release builds leave tracing on;
// debug builds switch it off once the container is built.
package bwboot
