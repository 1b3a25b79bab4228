// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codegen

import (
	"strings"

	"github.com/protospec/pbgen/descriptor"
)

const pkgRPC = "github.com/protospec/pbgen/rpc"

// genService emits, for one resolved service, the three pieces spec.md
// 4.6's service-stub table describes: a package-level ServiceDescriptor
// literal, a client type with one method per RPC shaped according to
// its streaming flags, and a server dispatch interface generated code
// elsewhere (a transport) type-asserts against.
func genService(g *generatedFile, svc *descriptor.Service, pkg string) {
	rpcPkg := g.qualify(pkgRPC)
	name := localName(svc.Name)
	descVar := name + "ServiceDescriptor"
	fullName := strings.TrimPrefix(svc.Name, ".")

	g.P("var ", descVar, " = ", rpcPkg, ".ServiceDescriptor{")
	g.P("\tName: ", quote(fullName), ",")
	g.P("\tMethods: []", rpcPkg, ".MethodDescriptor{")
	for _, m := range svc.Methods {
		g.P("\t\t{")
		g.P("\t\t\tName: ", quote(m.Name), ",")
		g.P("\t\t\tFullPath: ", quote("/"+fullName+"/"+m.Name), ",")
		g.P("\t\t\tClientStreaming: ", m.ClientStreaming, ",")
		g.P("\t\t\tServerStreaming: ", m.ServerStreaming, ",")
		g.P("\t\t},")
	}
	g.P("\t},")
	g.P("}")
	g.P()

	genServiceServer(g, name, svc, pkg, rpcPkg)
	genServiceClient(g, name, svc, pkg, rpcPkg)
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func genServiceServer(g *generatedFile, name string, svc *descriptor.Service, pkg, rpcPkg string) {
	iface := name + "Server"
	g.P("type ", iface, " interface {")
	for _, m := range svc.Methods {
		in := goTypeName(m.InputType, pkg)
		out := goTypeName(m.OutputType, pkg)
		switch {
		case !m.ClientStreaming && !m.ServerStreaming:
			g.P("\t", exportedName(m.Name), "(ctx ", rpcPkg, ".Context, req *", in, ") (*", out, ", error)")
		case !m.ClientStreaming && m.ServerStreaming:
			g.P("\t", exportedName(m.Name), "(ctx ", rpcPkg, ".Context, req *", in, ", stream ", rpcPkg, ".SendStream[", out, "]) error")
		case m.ClientStreaming && !m.ServerStreaming:
			g.P("\t", exportedName(m.Name), "(ctx ", rpcPkg, ".Context, stream ", rpcPkg, ".RecvStream[", in, "]) (*", out, ", error)")
		default:
			g.P("\t", exportedName(m.Name), "(ctx ", rpcPkg, ".Context, in ", rpcPkg, ".RecvStream[", in, "], out ", rpcPkg, ".SendStream[", out, "]) error")
		}
	}
	g.P("}")
	g.P()
}

func genServiceClient(g *generatedFile, name string, svc *descriptor.Service, pkg, rpcPkg string) {
	client := name + "Client"
	g.P("type ", client, " struct {")
	g.P("\tChannel ", rpcPkg, ".Channel")
	g.P("}")
	g.P()

	for _, m := range svc.Methods {
		in := goTypeName(m.InputType, pkg)
		out := goTypeName(m.OutputType, pkg)
		path := "/" + strings.TrimPrefix(svc.Name, ".") + "/" + m.Name
		mname := exportedName(m.Name)

		switch {
		case !m.ClientStreaming && !m.ServerStreaming:
			g.P("func (c *", client, ") ", mname, "(ctx ", rpcPkg, ".Context, req *", in, ") (*", out, ", error) {")
			g.P("\treqBytes, err := req.Marshal(0)")
			g.P("\tif err != nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\trespBytes, err := c.Channel.UnaryCall(ctx, ", quote(path), ", reqBytes)")
			g.P("\tif err != nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\treturn Unmarshal", out, "(respBytes, 0)")
			g.P("}")
			g.P()

		case !m.ClientStreaming && m.ServerStreaming:
			recvType := client + "_" + mname + "Stream"
			g.P("type ", recvType, " struct {")
			g.P("\tRaw ", rpcPkg, ".RawRecvStream")
			g.P("}")
			g.P()
			g.P("func (s *", recvType, ") Recv() (*", out, ", error) {")
			g.P("\tb, err := s.Raw.Recv()")
			g.P("\tif err != nil || b == nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\treturn Unmarshal", out, "(b, 0)")
			g.P("}")
			g.P()
			g.P("func (c *", client, ") ", mname, "(ctx ", rpcPkg, ".Context, req *", in, ") (*", recvType, ", error) {")
			g.P("\treqBytes, err := req.Marshal(0)")
			g.P("\tif err != nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\traw, err := c.Channel.OpenServerStream(ctx, ", quote(path), ", reqBytes)")
			g.P("\tif err != nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\treturn &", recvType, "{Raw: raw}, nil")
			g.P("}")
			g.P()

		case m.ClientStreaming && !m.ServerStreaming:
			sendType := client + "_" + mname + "Stream"
			g.P("type ", sendType, " struct {")
			g.P("\tRaw ", rpcPkg, ".RawBidiStream")
			g.P("}")
			g.P()
			g.P("func (s *", sendType, ") Send(req *", in, ") error {")
			g.P("\tb, err := req.Marshal(0)")
			g.P("\tif err != nil {")
			g.P("\t\treturn err")
			g.P("\t}")
			g.P("\treturn s.Raw.Send.Send(b)")
			g.P("}")
			g.P()
			g.P("func (s *", sendType, ") CloseAndRecv() (*", out, ", error) {")
			g.P("\tif err := s.Raw.Send.Close(); err != nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\tb, err := s.Raw.Recv.Recv()")
			g.P("\tif err != nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\treturn Unmarshal", out, "(b, 0)")
			g.P("}")
			g.P()
			g.P("func (c *", client, ") ", mname, "(ctx ", rpcPkg, ".Context) (*", sendType, ", error) {")
			g.P("\traw, err := c.Channel.OpenClientStream(ctx, ", quote(path), ")")
			g.P("\tif err != nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\treturn &", sendType, "{Raw: raw}, nil")
			g.P("}")
			g.P()

		default:
			bidiType := client + "_" + mname + "Stream"
			g.P("type ", bidiType, " struct {")
			g.P("\tRaw ", rpcPkg, ".RawBidiStream")
			g.P("}")
			g.P()
			g.P("func (s *", bidiType, ") Send(req *", in, ") error {")
			g.P("\tb, err := req.Marshal(0)")
			g.P("\tif err != nil {")
			g.P("\t\treturn err")
			g.P("\t}")
			g.P("\treturn s.Raw.Send.Send(b)")
			g.P("}")
			g.P()
			g.P("func (s *", bidiType, ") Close() error { return s.Raw.Send.Close() }")
			g.P()
			g.P("func (s *", bidiType, ") Recv() (*", out, ", error) {")
			g.P("\tb, err := s.Raw.Recv.Recv()")
			g.P("\tif err != nil || b == nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\treturn Unmarshal", out, "(b, 0)")
			g.P("}")
			g.P()
			g.P("func (c *", client, ") ", mname, "(ctx ", rpcPkg, ".Context) (*", bidiType, ", error) {")
			g.P("\traw, err := c.Channel.OpenBidiStream(ctx, ", quote(path), ")")
			g.P("\tif err != nil {")
			g.P("\t\treturn nil, err")
			g.P("\t}")
			g.P("\treturn &", bidiType, "{Raw: raw}, nil")
			g.P("}")
			g.P()
		}
	}
}
